package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and print it in a
human readable format.
`)
		fl.PrintDefaults()
	}
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return fmt.Errorf("cannot read message: %s", err)
	}
	view := struct {
		Path       string
		Msg        interface{}
		Signatures interface{}
	}{
		Path:       msg.Path(),
		Msg:        msg,
		Signatures: tx.Signatures,
	}
	pretty, err := json.MarshalIndent(view, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}
