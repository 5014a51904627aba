package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/system"
	"github.com/iov-one/ledger/x/token"
)

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a ABCI query and print JSON encoded result.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", defaultTmAddr(),
			"Tendermint node address. You can use ESCROWCLI_TM_ADDR environment variable to set it.")
		pathFl        = fl.String("path", "", "Path to be queried. Must be one of the supported.")
		dataFl        = fl.String("data", "", "Address to query for. If not given, all entities are returned.")
		prefixQueryFl = fl.Bool("prefix", false, "If true, use prefix queries instead of the exact match with provided data.")
	)
	fl.Parse(args)

	conf, ok := queries[*pathFl]
	if !ok {
		return fmt.Errorf("available query paths:\n\t- %s", strings.Join(queryPaths(), "\n\t- "))
	}

	var data []byte
	if len(*dataFl) != 0 {
		addr, err := ledger.ParseAddress(*dataFl)
		if err != nil {
			return fmt.Errorf("cannot parse data: %s", err)
		}
		data = addr
	}
	queryPath := *pathFl
	if *prefixQueryFl || *dataFl == "" {
		queryPath += "?" + ledger.PrefixQueryMod
	}

	models, err := newClient(*tmAddrFl).QueryModels(queryPath, data)
	if err != nil {
		return fmt.Errorf("failed to run query: %s", err)
	}
	result, err := decodeModels(conf, models)
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(pretty))
	return err
}

type keyval struct {
	Key   ledger.Address
	Value interface{}
}

func decodeModels(conf func([]byte) (interface{}, error), models []ledger.Model) ([]keyval, error) {
	result := make([]keyval, 0, len(models))
	for i, m := range models {
		obj, err := conf(m.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		result = append(result, keyval{Key: addressKey(m.Key), Value: obj})
	}
	return result, nil
}

// addressKey strips the bucket prefix from a key. All queried entities are
// stored under an address.
func addressKey(key []byte) ledger.Address {
	if len(key) < ledger.AddressLength {
		return ledger.Address(key)
	}
	return ledger.Address(key[len(key)-ledger.AddressLength:])
}

// queries maps a query path to the decoder of the returned values.
var queries = map[string]func([]byte) (interface{}, error){
	"/accounts":             decodeAccount,
	"/escrows":              decodeInto(func() model { return &escrow.Escrow{} }),
	"/escrows/closed":       decodeInto(func() model { return &escrow.Closed{} }),
	"/escrows/closed/maker": decodeInto(func() model { return &escrow.Closed{} }),
	"/nonces":               decodeInto(func() model { return &sigs.UserData{} }),
}

func queryPaths() []string {
	paths := make([]string, 0, len(queries))
	for p := range queries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type model interface {
	Unmarshal([]byte) error
}

func decodeInto(newObj func() model) func([]byte) (interface{}, error) {
	return func(raw []byte) (interface{}, error) {
		obj := newObj()
		if err := obj.Unmarshal(raw); err != nil {
			return nil, err
		}
		return obj, nil
	}
}

// accountView presents an account with its data decoded when the owner
// program is known.
type accountView struct {
	Lamports uint64
	Owner    ledger.Address
	Data     interface{}
}

func decodeAccount(raw []byte) (interface{}, error) {
	var acc system.Account
	if err := acc.Unmarshal(raw); err != nil {
		return nil, err
	}
	view := accountView{Lamports: acc.Lamports, Owner: acc.Owner, Data: acc.Data}
	switch {
	case acc.Owner.Equals(token.ProgramID) && len(acc.Data) == token.AccountLen:
		var ta token.Account
		if err := ta.Unmarshal(acc.Data); err == nil {
			view.Data = &ta
		}
	case acc.Owner.Equals(token.ProgramID) && len(acc.Data) == token.MintLen:
		var m token.Mint
		if err := m.Unmarshal(acc.Data); err == nil {
			view.Data = &m
		}
	case acc.Owner.Equals(escrow.ProgramID):
		var e escrow.Escrow
		if err := e.Unmarshal(acc.Data); err == nil {
			view.Data = &e
		}
	}
	return view, nil
}
