package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iov-one/ledger"
	escrowd "github.com/iov-one/ledger/cmd/escrowd/app"
	"github.com/iov-one/ledger/commands/server"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome     = "home"
	flagLogLevel = "log_level"
	varHome      *string
	varLogLevel  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".escrowd")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLogLevel = flag.String(flagLogLevel, "info", "log level, eg. info or *:debug")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("escrowd")
	fmt.Println("          Token swap escrow node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("validate  Check that genesis files load")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.escrowd")
  -log_level string
        log level, eg. info or *:debug (default "info")`)
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	logger, err := flags.ParseLogLevel(*varLogLevel, logger, "info")
	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		os.Exit(1)
	}
	logger = logger.With("module", "escrow")

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(escrowd.GenInitOptions, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(escrowd.GenerateApp, logger, *varHome, rest)
	case "validate":
		err = server.ValidateGenesis(escrowd.Initializers(), rest)
	case "version":
		fmt.Println(ledger.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}
