package main

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/realDragonium/mcquery/config"
)

type reloadCommand struct {
	Config  string `short:"c" long:"config" env:"MCQUERY_CONFIG" description:"Path to the exporter config, used to find the exporter"`
	Address string `long:"address" description:"Address of the exporter, overrides the listenTo of the config"`

	out io.Writer
}

func (cmd *reloadCommand) Execute(args []string) error {
	address := cmd.Address
	if address == "" {
		if cmd.Config == "" {
			return fmt.Errorf("either --config or --address is required")
		}
		cfg, err := config.ReadExporterConfig(cmd.Config)
		if err != nil {
			return err
		}
		address = cfg.ListenTo
	}

	if err := callReloadAPI(address); err != nil {
		return err
	}
	fmt.Fprintln(cmd.out, "Finished reloading")
	return nil
}

func callReloadAPI(address string) error {
	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(reloadURL(address), "text/plain", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bb, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("reload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bb)))
	}
	return nil
}

// reloadURL turns a listen address like ":9150" into a URL that reaches it.
func reloadURL(address string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Sprintf("http://%s/reload", address)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/reload", net.JoinHostPort(host, port))
}
