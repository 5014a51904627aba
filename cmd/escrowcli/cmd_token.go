package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

func cmdSend(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction moving lamports from the source account to the
destination account.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl      = flAddress(fl, "src", "", "A source account address that the lamports are send from.")
		dstFl      = flAddress(fl, "dst", "", "A destination account address that the lamports are send to.")
		lamportsFl = fl.Uint64("lamports", 0, "Amount of lamports to move.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{"src": srcFl, "dst": dstFl})

	tx := app.NewTx(&system.SendMsg{
		Src:      *srcFl,
		Dest:     *dstFl,
		Lamports: *lamportsFl,
	})
	_, err := writeTx(output, tx)
	return err
}

func cmdTransfer(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction moving tokens between two token accounts of the same
mint. The authority is the owner of the source token account.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl       = flAddress(fl, "src", "", "Source token account.")
		dstFl       = flAddress(fl, "dst", "", "Destination token account.")
		authorityFl = flAddress(fl, "authority", "", "Owner of the source token account. Must sign the transaction.")
		amountFl    = fl.Uint64("amount", 0, "Amount of tokens to move.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{"src": srcFl, "dst": dstFl, "authority": authorityFl})

	tx := app.NewTx(&token.TransferMsg{
		Src:       *srcFl,
		Dest:      *dstFl,
		Authority: *authorityFl,
		Amount:    *amountFl,
	})
	_, err := writeTx(output, tx)
	return err
}

func cmdCreateAssociated(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction opening the associated token account of a wallet for
the given mint. The payer funds the account rent.
`)
		fl.PrintDefaults()
	}
	var (
		payerFl  = flAddress(fl, "payer", "", "Account paying the rent. Must sign the transaction.")
		walletFl = flAddress(fl, "wallet", "", "Wallet owning the new token account.")
		mintFl   = flAddress(fl, "mint", "", "Mint of the new token account.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{"payer": payerFl, "wallet": walletFl, "mint": mintFl})

	tx := app.NewTx(&token.CreateAssociatedMsg{
		Payer:  *payerFl,
		Wallet: *walletFl,
		Mint:   *mintFl,
	})
	_, err := writeTx(output, tx)
	return err
}
