package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/realDragonium/mcquery/logger"
)

var version = "dev"

var ErrNoCommand = errors.New("no command given, try 'status', 'exporter' or 'reload'")

type options struct {
	Logger  logger.Config `group:"Logger Options" env-namespace:"MCQUERY"`
	Version bool          `short:"v" long:"version" description:"Print version and exit"`
}

func newParser(opts *options, out io.Writer) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)
	parser.SubcommandsOptional = true
	parser.EnvNamespaceDelimiter = "_"

	parser.AddCommand("status",
		"Query the status of a server",
		"Query the status of a Minecraft server and print it.",
		&statusCommand{out: out})
	parser.AddCommand("exporter",
		"Run the Prometheus exporter",
		"Poll the configured servers and serve their status as Prometheus metrics.",
		&exporterCommand{})
	parser.AddCommand("reload",
		"Reload a running exporter",
		"Ask a running exporter to read its config file again.",
		&reloadCommand{out: out})

	parser.CommandHandler = func(command flags.Commander, args []string) error {
		if opts.Version {
			fmt.Fprintln(out, "mcquery", version)
			return nil
		}
		if command == nil {
			return ErrNoCommand
		}

		closer, err := logger.Setup(opts.Logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		return command.Execute(args)
	}
	return parser
}

func main() {
	var opts options
	parser := newParser(&opts, os.Stdout)

	// the parser prints its own and the commands' errors
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
