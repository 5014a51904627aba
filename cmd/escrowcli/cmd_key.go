package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/iov-one/ledger/crypto"
	"golang.org/x/crypto/ed25519"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with binary content containing private key is
created. This command fails if the private key file already exists.

If -seed is given, the key is derived from that hex encoded master seed
using the -path SLIP-0010 derivation path instead of being random.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use ESCROWCLI_PRIV_KEY environment variable to set it.")
		seedFl = fl.String("seed", "", "Optional hex encoded master seed to derive the key from.")
		pathFl = fl.String("path", "m/44'/501'/0'", "Derivation path, used together with -seed.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Do not allow to overwrite already existing private key. User
		// must manually delete it first to ensure we do not delete
		// such crucial data by an accident (bad command usage).
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	var priv crypto.PrivateKey
	if *seedFl != "" {
		var err error
		priv, err = crypto.DeriveKeyHex(*seedFl, *pathFl)
		if err != nil {
			return fmt.Errorf("cannot derive key: %s", err)
		}
	} else {
		priv = crypto.GenPrivKeyEd25519()
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(priv); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, priv.Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = fl.String("key", defaultKeyPath(),
			"Path to the private key file that transaction should be signed with. You can use ESCROWCLI_PRIV_KEY environment variable to set it.")
		bechFl = fl.Bool("bech32", false, "Print the address in bech32 format.")
	)
	fl.Parse(args)

	key, err := decodePrivateKey(*keyPathFl)
	if err != nil {
		return err
	}
	if *bechFl {
		enc, err := key.Address().Bech32()
		if err != nil {
			return fmt.Errorf("cannot encode address: %s", err)
		}
		_, err = fmt.Fprintln(output, enc)
		return err
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

func decodePrivateKey(filepath string) (crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q file: %s", filepath, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return crypto.PrivateKey(raw), nil
}
