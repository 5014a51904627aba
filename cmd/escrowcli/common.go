package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/cmd/escrowd/app"
)

// writeTx serialize the transaction using amino. First bytes written
// contain the information how much space the transaction takes. Size
// information is required to be able to stream the messages.
func writeTx(w io.Writer, tx *app.Tx) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*app.Tx, int, error) {
	// When serialized using writeTx function, first bytes contain
	// information about the actual size of the transaction message.
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	var tx app.Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, int(msgSize + txHeaderSize), err
	}
	return &tx, int(msgSize + txHeaderSize), nil
}

const txHeaderSize = 4

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided. This
// function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *ledger.Address {
	var a ledger.Address
	if defaultVal != "" {
		var err error
		a, err = ledger.ParseAddress(defaultVal)
		if err != nil {
			flagDie("Cannot parse %q address flag value. %s", name, err)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// requireAddresses terminates the process if any of the named address
// flags was not provided.
func requireAddresses(addrs map[string]*ledger.Address) {
	for name, a := range addrs {
		if len(*a) == 0 {
			flagDie("-%s is required", name)
		}
	}
}

// flagDie terminates the program when a command line flag is not valid.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description, args...)
	fmt.Fprintln(os.Stderr)
	os.Exit(2)
}

func defaultKeyPath() string {
	return env("ESCROWCLI_PRIV_KEY", os.Getenv("HOME")+"/.escrowd.priv.key")
}

func defaultTmAddr() string {
	return env("ESCROWCLI_TM_ADDR", "http://localhost:26657")
}
