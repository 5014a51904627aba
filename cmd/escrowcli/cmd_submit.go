package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x/escrow"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it.

When an escrow is created, the escrow address is written out.

Make sure to collect enough signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	res, err := newClient(*tmAddrFl).Broadcast(tx)
	if err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}

	if _, ok := tx.Msg.(*escrow.MakeMsg); ok {
		_, err = fmt.Fprintln(output, ledger.Address(res.DeliverTx.Data))
		return err
	}
	_, err = fmt.Fprintf(output, "committed at height %d\n", res.Height)
	return err
}
