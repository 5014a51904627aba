package main

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func tempKeyPath(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "escrowcli")
	if err != nil {
		t.Fatalf("cannot create temporary directory: %s", err)
	}
	return filepath.Join(dir, "key"), func() { os.RemoveAll(dir) }
}

func TestKeygenFromSeed(t *testing.T) {
	const seed = "000102030405060708090a0b0c0d0e0f"

	keyPath, cleanup := tempKeyPath(t)
	defer cleanup()

	var output bytes.Buffer
	args := []string{"-key", keyPath, "-seed", seed, "-path", "m/0'"}
	if err := cmdKeygen(nil, &output, args); err != nil {
		t.Fatalf("cannot generate a key: %s", err)
	}

	want, err := crypto.DeriveKeyHex(seed, "m/0'")
	assert.Nil(t, err)
	assert.Equal(t, want.Address().String()+"\n", output.String())

	raw, err := ioutil.ReadFile(keyPath)
	assert.Nil(t, err)
	assert.EqualBytes(t, want, raw)

	// Existing key must never be overwritten.
	if err := cmdKeygen(nil, &output, args); err == nil {
		t.Fatal("key file overwritten")
	}
}

func TestKeyaddr(t *testing.T) {
	keyPath, cleanup := tempKeyPath(t)
	defer cleanup()

	var generated bytes.Buffer
	if err := cmdKeygen(nil, &generated, []string{"-key", keyPath}); err != nil {
		t.Fatalf("cannot generate a key: %s", err)
	}

	var output bytes.Buffer
	if err := cmdKeyaddr(nil, &output, []string{"-key", keyPath}); err != nil {
		t.Fatalf("cannot print address: %s", err)
	}
	assert.Equal(t, generated.String(), output.String())

	output.Reset()
	if err := cmdKeyaddr(nil, &output, []string{"-key", keyPath, "-bech32"}); err != nil {
		t.Fatalf("cannot print bech32 address: %s", err)
	}
	enc := strings.TrimSpace(output.String())
	addr, err := ledger.ParseAddress("bech32:" + enc)
	assert.Nil(t, err)
	assert.Equal(t, strings.TrimSpace(generated.String()), addr.String())
}

func TestDecodePrivateKeyInvalidLength(t *testing.T) {
	keyPath, cleanup := tempKeyPath(t)
	defer cleanup()

	if err := ioutil.WriteFile(keyPath, []byte("too short"), 0600); err != nil {
		t.Fatalf("cannot write key file: %s", err)
	}
	if _, err := decodePrivateKey(keyPath); err == nil {
		t.Fatal("invalid key accepted")
	}
}
