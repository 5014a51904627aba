package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const tendermintGenesis = `{
  "genesis_time": "2019-05-01T10:00:00Z",
  "chain_id": "test-chain-LgVOZ0",
  "validators": [{"power": "10", "name": ""}],
  "app_hash": ""
}`

// setupHome creates a home directory holding the genesis file that
// tendermint init would have written.
func setupHome(t *testing.T) (string, func()) {
	home, err := ioutil.TempDir("", "escrowd-init-")
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(home, "config"), 0755))
	genFile := filepath.Join(home, "config", "genesis.json")
	require.NoError(t, ioutil.WriteFile(genFile, []byte(tendermintGenesis), 0600))
	return home, func() { os.RemoveAll(home) }
}

func fixedOptions(state string) GenOptions {
	return func(args []string) (json.RawMessage, error) {
		return json.RawMessage(state), nil
	}
}

func TestInit(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()

	logger := log.NewNopLogger()
	err := InitCmd(fixedOptions(`{"system": {"accounts": []}}`), logger, home, nil)
	require.NoError(t, err)

	doc, err := loadDoc(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	// keep old values, and add our values
	assert.EqualValues(t, []byte(`"test-chain-LgVOZ0"`), doc["chain_id"])
	assert.NotEmpty(t, doc["validators"])
	assert.JSONEq(t, `{"system": {"accounts": []}}`, string(doc[appStateKey]))

	// app_state can only be replaced explicitly
	err = InitCmd(fixedOptions(`{}`), logger, home, nil)
	assert.True(t, errors.ErrDuplicate.Is(err))
	err = InitCmd(fixedOptions(`{"token": {}}`), logger, home, []string{"-f"})
	require.NoError(t, err)
	doc, err = loadDoc(filepath.Join(home, "config", "genesis.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"token": {}}`, string(doc[appStateKey]))
}

func TestInitPassesArguments(t *testing.T) {
	home, cleanup := setupHome(t)
	defer cleanup()

	var got []string
	gen := func(args []string) (json.RawMessage, error) {
		got = args
		return json.RawMessage(`{}`), nil
	}
	err := InitCmd(gen, log.NewNopLogger(), home, []string{"-f", "first", "second"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestInitRequiresTendermint(t *testing.T) {
	home, err := ioutil.TempDir("", "escrowd-init-")
	require.NoError(t, err)
	defer os.RemoveAll(home)

	err = InitCmd(fixedOptions(`{}`), log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}
