package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/ledger"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is an independent runnable that is taking input and
// output being stdin and stdout. Given args are the command line arguments,
// without the program name and the command name, that should be parsed using
// the flag package.
//
// Keep each command simple. A unix pipe can be used to construct a pipeline,
// for example to create, sign and submit an escrow:
//
//   $ escrowcli make -maker $MAKER -seed 7 -receive 50 -deposit 100 \
//       -mint-a $MINT_A -mint-b $MINT_B \
//       | escrowcli sign \
//       | escrowcli submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"create-ata": cmdCreateAssociated,
	"derive":     cmdDerive,
	"keyaddr":    cmdKeyaddr,
	"keygen":     cmdKeygen,
	"make":       cmdMake,
	"query":      cmdQuery,
	"refund":     cmdRefund,
	"send":       cmdSend,
	"sign":       cmdSignTransaction,
	"submit":     cmdSubmitTransaction,
	"take":       cmdTake,
	"transfer":   cmdTransfer,
	"version":    cmdVersion,
	"view":       cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the escrow application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	// Skip two first arguments. Second argument is the command name that
	// we just consumed.
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, ledger.Version())
	return err
}
