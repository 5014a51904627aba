package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

Chain ID and the signer sequence are fetched from the node unless both -chain
and -seq are given, which allows signing offline.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use ESCROWCLI_PRIV_KEY environment variable to set it.")
		chainFl = fl.String("chain", "", "Chain ID. Fetched from the node if not provided.")
		seqFl   = fl.Int64("seq", -1, "Sequence of the signer. Fetched from the node if negative.")
	)
	fl.Parse(args)

	if *keyPathFl == "" {
		return errors.New("private key is required")
	}
	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	chainID, seq := *chainFl, *seqFl
	if chainID == "" || seq < 0 {
		c := newClient(*tmAddrFl)
		if chainID == "" {
			if chainID, err = c.ChainID(); err != nil {
				return err
			}
		}
		if seq < 0 {
			if seq, err = c.NextNonce(key.Address()); err != nil {
				return fmt.Errorf("cannot get the next sequence number: %s", err)
			}
		}
	}

	if err := tx.Sign(key, chainID, seq); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	_, err = writeTx(output, tx)
	return err
}
