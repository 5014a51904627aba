package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
)

func cmdMake(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction opening an escrow. The maker deposits tokens of mint A
into the escrow vault and asks for the given amount of mint B in return.

Escrow, vault and the maker token account addresses are derived from the
maker address, the seed and the mint.
`)
		fl.PrintDefaults()
	}
	var (
		makerFl   = flAddress(fl, "maker", "", "Address of the escrow maker. Must sign the transaction.")
		seedFl    = fl.Uint64("seed", 0, "Seed distinguishing escrows of the same maker.")
		receiveFl = fl.Uint64("receive", 0, "Amount of mint B tokens the maker wants to receive.")
		depositFl = fl.Uint64("deposit", 0, "Amount of mint A tokens moved into the vault.")
		mintAFl   = flAddress(fl, "mint-a", "", "Mint of the deposited tokens.")
		mintBFl   = flAddress(fl, "mint-b", "", "Mint of the requested tokens.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{"maker": makerFl, "mint-a": mintAFl, "mint-b": mintBFl})

	esc, _, err := escrow.EscrowAddress(*makerFl, *seedFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	vault, err := escrow.VaultAddress(esc, *mintAFl)
	if err != nil {
		return fmt.Errorf("cannot derive vault address: %s", err)
	}
	makerAta, err := token.AssociatedAddress(*makerFl, *mintAFl)
	if err != nil {
		return fmt.Errorf("cannot derive maker token account: %s", err)
	}

	tx := app.NewTx(&escrow.MakeMsg{
		Maker:     *makerFl,
		Seed:      *seedFl,
		Receive:   *receiveFl,
		Deposit:   *depositFl,
		MintA:     *mintAFl,
		MintB:     *mintBFl,
		MakerAtaA: makerAta,
		Escrow:    esc,
		Vault:     vault,
	})
	_, err = writeTx(output, tx)
	return err
}

func cmdTake(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction taking an open escrow. The taker pays the requested
amount of mint B to the maker and receives the whole vault of mint A.
`)
		fl.PrintDefaults()
	}
	var (
		takerFl  = flAddress(fl, "taker", "", "Address of the taker. Must sign the transaction.")
		makerFl  = flAddress(fl, "maker", "", "Address of the escrow maker.")
		escrowFl = flAddress(fl, "escrow", "", "Address of the escrow.")
		mintAFl  = flAddress(fl, "mint-a", "", "Mint of the deposited tokens.")
		mintBFl  = flAddress(fl, "mint-b", "", "Mint of the requested tokens.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{
		"taker": takerFl, "maker": makerFl, "escrow": escrowFl, "mint-a": mintAFl, "mint-b": mintBFl,
	})

	msg := escrow.TakeMsg{
		Taker:  *takerFl,
		Maker:  *makerFl,
		Escrow: *escrowFl,
	}
	var err error
	if msg.Vault, err = escrow.VaultAddress(*escrowFl, *mintAFl); err != nil {
		return fmt.Errorf("cannot derive vault address: %s", err)
	}
	if msg.TakerAtaA, err = token.AssociatedAddress(*takerFl, *mintAFl); err != nil {
		return fmt.Errorf("cannot derive taker token account: %s", err)
	}
	if msg.TakerAtaB, err = token.AssociatedAddress(*takerFl, *mintBFl); err != nil {
		return fmt.Errorf("cannot derive taker token account: %s", err)
	}
	if msg.MakerAtaB, err = token.AssociatedAddress(*makerFl, *mintBFl); err != nil {
		return fmt.Errorf("cannot derive maker token account: %s", err)
	}
	_, err = writeTx(output, app.NewTx(&msg))
	return err
}

func cmdRefund(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction cancelling an open escrow. The whole vault is returned
to the maker and both escrow and vault accounts are closed.
`)
		fl.PrintDefaults()
	}
	var (
		makerFl  = flAddress(fl, "maker", "", "Address of the escrow maker. Must sign the transaction.")
		escrowFl = flAddress(fl, "escrow", "", "Address of the escrow.")
		mintAFl  = flAddress(fl, "mint-a", "", "Mint of the deposited tokens.")
	)
	fl.Parse(args)
	requireAddresses(map[string]*ledger.Address{"maker": makerFl, "escrow": escrowFl, "mint-a": mintAFl})

	msg := escrow.RefundMsg{
		Maker:  *makerFl,
		Escrow: *escrowFl,
	}
	var err error
	if msg.Vault, err = escrow.VaultAddress(*escrowFl, *mintAFl); err != nil {
		return fmt.Errorf("cannot derive vault address: %s", err)
	}
	if msg.MakerAtaA, err = token.AssociatedAddress(*makerFl, *mintAFl); err != nil {
		return fmt.Errorf("cannot derive maker token account: %s", err)
	}
	_, err = writeTx(output, app.NewTx(&msg))
	return err
}

func cmdDerive(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the addresses derived for an escrow: the escrow address with its
bump seed and, if -mint-a is given, the vault address.

With -wallet and -mint only the associated token account address is printed.
`)
		fl.PrintDefaults()
	}
	var (
		makerFl  = flAddress(fl, "maker", "", "Address of the escrow maker.")
		seedFl   = fl.Uint64("seed", 0, "Seed distinguishing escrows of the same maker.")
		mintAFl  = flAddress(fl, "mint-a", "", "Optional mint of the deposited tokens.")
		walletFl = flAddress(fl, "wallet", "", "Wallet owning an associated token account.")
		mintFl   = flAddress(fl, "mint", "", "Mint of an associated token account.")
	)
	fl.Parse(args)

	if len(*walletFl) != 0 || len(*mintFl) != 0 {
		requireAddresses(map[string]*ledger.Address{"wallet": walletFl, "mint": mintFl})
		ata, err := token.AssociatedAddress(*walletFl, *mintFl)
		if err != nil {
			return fmt.Errorf("cannot derive token account: %s", err)
		}
		_, err = fmt.Fprintln(output, ata)
		return err
	}

	requireAddresses(map[string]*ledger.Address{"maker": makerFl})
	esc, bump, err := escrow.EscrowAddress(*makerFl, *seedFl)
	if err != nil {
		return fmt.Errorf("cannot derive escrow address: %s", err)
	}
	fmt.Fprintf(output, "escrow: %s\nbump:   %d\n", esc, bump)
	if len(*mintAFl) != 0 {
		vault, err := escrow.VaultAddress(esc, *mintAFl)
		if err != nil {
			return fmt.Errorf("cannot derive vault address: %s", err)
		}
		fmt.Fprintf(output, "vault:  %s\n", vault)
	}
	return nil
}
