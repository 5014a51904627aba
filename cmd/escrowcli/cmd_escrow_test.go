package main

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
)

func TestCmdMakeHappyPath(t *testing.T) {
	var (
		maker = ledgertest.NewAddress()
		mintA = ledgertest.NewAddress()
		mintB = ledgertest.NewAddress()
	)
	var output bytes.Buffer
	args := []string{
		"-maker", maker.String(),
		"-seed", "7",
		"-receive", "50",
		"-deposit", "100",
		"-mint-a", mintA.String(),
		"-mint-b", mintB.String(),
	}
	if err := cmdMake(nil, &output, args); err != nil {
		t.Fatalf("cannot create a make transaction: %s", err)
	}

	tx := readOneTx(t, &output)
	msg := tx.Msg.(*escrow.MakeMsg)
	if err := msg.Validate(); err != nil {
		t.Fatalf("invalid message: %s", err)
	}

	esc, _, err := escrow.EscrowAddress(maker, 7)
	assert.Nil(t, err)
	vault, err := escrow.VaultAddress(esc, mintA)
	assert.Nil(t, err)
	ata, err := token.AssociatedAddress(maker, mintA)
	assert.Nil(t, err)

	assert.Equal(t, uint64(7), msg.Seed)
	assert.Equal(t, uint64(50), msg.Receive)
	assert.Equal(t, uint64(100), msg.Deposit)
	assert.Equal(t, esc, msg.Escrow)
	assert.Equal(t, vault, msg.Vault)
	assert.Equal(t, ata, msg.MakerAtaA)
	assert.Equal(t, 0, len(tx.Signatures))
}

func TestCmdTakeHappyPath(t *testing.T) {
	var (
		maker = ledgertest.NewAddress()
		taker = ledgertest.NewAddress()
		mintA = ledgertest.NewAddress()
		mintB = ledgertest.NewAddress()
	)
	esc, _, err := escrow.EscrowAddress(maker, 1)
	assert.Nil(t, err)

	var output bytes.Buffer
	args := []string{
		"-taker", taker.String(),
		"-maker", maker.String(),
		"-escrow", esc.String(),
		"-mint-a", mintA.String(),
		"-mint-b", mintB.String(),
	}
	if err := cmdTake(nil, &output, args); err != nil {
		t.Fatalf("cannot create a take transaction: %s", err)
	}

	msg := readOneTx(t, &output).Msg.(*escrow.TakeMsg)
	if err := msg.Validate(); err != nil {
		t.Fatalf("invalid message: %s", err)
	}
	vault, err := escrow.VaultAddress(esc, mintA)
	assert.Nil(t, err)
	assert.Equal(t, vault, msg.Vault)

	cases := map[string]struct {
		wallet, mint, got ledger.Address
	}{
		"taker_ata_a": {taker, mintA, msg.TakerAtaA},
		"taker_ata_b": {taker, mintB, msg.TakerAtaB},
		"maker_ata_b": {maker, mintB, msg.MakerAtaB},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ata, err := token.AssociatedAddress(tc.wallet, tc.mint)
			assert.Nil(t, err)
			assert.Equal(t, ata, tc.got)
		})
	}
}

func TestCmdRefundHappyPath(t *testing.T) {
	var (
		maker = ledgertest.NewAddress()
		mintA = ledgertest.NewAddress()
	)
	esc, _, err := escrow.EscrowAddress(maker, 3)
	assert.Nil(t, err)

	var output bytes.Buffer
	args := []string{
		"-maker", maker.String(),
		"-escrow", esc.String(),
		"-mint-a", mintA.String(),
	}
	if err := cmdRefund(nil, &output, args); err != nil {
		t.Fatalf("cannot create a refund transaction: %s", err)
	}

	msg := readOneTx(t, &output).Msg.(*escrow.RefundMsg)
	if err := msg.Validate(); err != nil {
		t.Fatalf("invalid message: %s", err)
	}
	assert.Equal(t, maker, msg.Maker)
	assert.Equal(t, esc, msg.Escrow)
}

func TestCmdDerive(t *testing.T) {
	maker := ledgertest.NewAddress()
	mintA := ledgertest.NewAddress()

	var output bytes.Buffer
	args := []string{"-maker", maker.String(), "-seed", "42", "-mint-a", mintA.String()}
	if err := cmdDerive(nil, &output, args); err != nil {
		t.Fatalf("cannot derive: %s", err)
	}

	esc, bump, err := escrow.EscrowAddress(maker, 42)
	assert.Nil(t, err)
	vault, err := escrow.VaultAddress(esc, mintA)
	assert.Nil(t, err)
	want := "escrow: " + esc.String() + "\n" +
		"bump:   " + strconv.Itoa(int(bump)) + "\n" +
		"vault:  " + vault.String() + "\n"
	assert.Equal(t, want, output.String())

	output.Reset()
	args = []string{"-wallet", maker.String(), "-mint", mintA.String()}
	if err := cmdDerive(nil, &output, args); err != nil {
		t.Fatalf("cannot derive token account: %s", err)
	}
	ata, err := token.AssociatedAddress(maker, mintA)
	assert.Nil(t, err)
	assert.Equal(t, ata.String()+"\n", output.String())
}
