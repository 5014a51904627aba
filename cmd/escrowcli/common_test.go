package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/x/system"
)

// readOneTx decodes the only transaction written to the buffer.
func readOneTx(t testing.TB, b *bytes.Buffer) *app.Tx {
	t.Helper()

	tx, _, err := readTx(b)
	if err != nil {
		t.Fatalf("cannot read transaction: %s", err)
	}
	if b.Len() != 0 {
		t.Fatalf("unexpected %d bytes left after the transaction", b.Len())
	}
	return tx
}

func TestTxStream(t *testing.T) {
	var (
		src = ledgertest.NewAddress()
		dst = ledgertest.NewAddress()
	)
	var stream bytes.Buffer
	for i := uint64(1); i <= 3; i++ {
		tx := app.NewTx(&system.SendMsg{Src: src, Dest: dst, Lamports: i})
		if _, err := writeTx(&stream, tx); err != nil {
			t.Fatalf("cannot write transaction %d: %s", i, err)
		}
	}

	for i := uint64(1); i <= 3; i++ {
		tx, n, err := readTx(&stream)
		if err != nil {
			t.Fatalf("cannot read transaction %d: %s", i, err)
		}
		if n <= txHeaderSize {
			t.Fatalf("unexpected read size %d", n)
		}
		msg := tx.Msg.(*system.SendMsg)
		assert.Equal(t, i, msg.Lamports)
		assert.Equal(t, src, msg.Src)
	}

	if _, _, err := readTx(&stream); err != io.EOF {
		t.Fatalf("want EOF at the end of the stream, got %v", err)
	}
}

func TestTruncatedTx(t *testing.T) {
	var b bytes.Buffer
	tx := app.NewTx(&system.SendMsg{Src: ledgertest.NewAddress(), Dest: ledgertest.NewAddress(), Lamports: 1})
	if _, err := writeTx(&b, tx); err != nil {
		t.Fatalf("cannot write transaction: %s", err)
	}
	raw := b.Bytes()[:b.Len()-3]
	if _, _, err := readTx(bytes.NewReader(raw)); err != io.ErrUnexpectedEOF {
		t.Fatalf("want unexpected EOF, got %v", err)
	}
}

func TestAddressKey(t *testing.T) {
	addr := ledgertest.NewAddress()
	key := append([]byte("accounts:"), addr...)
	assert.Equal(t, addr, addressKey(key))
	assert.Equal(t, ledger.Address("short"), addressKey([]byte("short")))
}
