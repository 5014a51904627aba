package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/x/escrow"
)

func TestCmdTransactionView(t *testing.T) {
	maker := ledgertest.NewAddress()
	esc, _, err := escrow.EscrowAddress(maker, 1)
	assert.Nil(t, err)

	var input bytes.Buffer
	tx := app.NewTx(&escrow.RefundMsg{
		Maker:     maker,
		MakerAtaA: ledgertest.NewAddress(),
		Escrow:    esc,
		Vault:     ledgertest.NewAddress(),
	})
	if _, err := writeTx(&input, tx); err != nil {
		t.Fatalf("cannot write transaction: %s", err)
	}

	var output bytes.Buffer
	if err := cmdTransactionView(&input, &output, nil); err != nil {
		t.Fatalf("cannot view transaction: %s", err)
	}

	var view struct {
		Path string
		Msg  struct {
			Maker  string `json:"maker"`
			Escrow string `json:"escrow"`
		}
	}
	if err := json.Unmarshal(output.Bytes(), &view); err != nil {
		t.Fatalf("cannot decode view: %s", err)
	}
	assert.Equal(t, "escrow/refund", view.Path)
	assert.Equal(t, maker.String(), view.Msg.Maker)
	assert.Equal(t, esc.String(), view.Msg.Escrow)
}
