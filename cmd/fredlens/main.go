package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"

	"fredlens/internal/cli"
	"fredlens/internal/logger"
)

func main() {
	logger.Init()

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	cli.Register(subcommands.DefaultCommander)

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
