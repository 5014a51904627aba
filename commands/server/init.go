package server

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/ledger/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appStateKey = "app_state"
	flagForce   = "f"
)

// GenOptions can parse command-line and flag to
// generate default app_state for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// genesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type genesisDoc map[string]json.RawMessage

func parseInitArgs(args []string) (bool, []string, error) {
	var force bool
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.BoolVar(&force, flagForce, false, "overwrite existing app_state")
	err := initFlags.Parse(args)
	return force, initFlags.Args(), err
}

// InitCmd will try to add the app_state to the tendermint genesis file
// found under home. The tendermint node must be initialized first.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	force, rest, err := parseInitArgs(args)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	if _, err := os.Stat(genFile); os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrNotFound,
			"%s does not exist, run tendermint init first", genFile)
	}

	doc, err := loadDoc(genFile)
	if err != nil {
		return err
	}
	if len(doc[appStateKey]) > 0 && string(doc[appStateKey]) != "null" && !force {
		return errors.Wrap(errors.ErrDuplicate, "app_state already set, use -f to overwrite")
	}

	options, err := gen(rest)
	if err != nil {
		return err
	}
	doc[appStateKey] = options

	if err := saveDoc(genFile, doc); err != nil {
		return err
	}
	logger.Info("App initialized", "genesis", genFile)
	fmt.Printf("The application state written to %s\n", genFile)
	return nil
}

func loadDoc(filename string) (genesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	var doc genesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return doc, nil
}

func saveDoc(filename string, doc genesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal genesis")
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	return nil
}
