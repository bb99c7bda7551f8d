package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/realDragonium/mcquery/mc"
	"github.com/realDragonium/mcquery/query"
	"github.com/realDragonium/mcquery/transport"
	"github.com/rs/zerolog/log"
)

type statusCommand struct {
	Legacy        bool          `long:"legacy" description:"Fall back to the legacy ping when the status query fails"`
	NoSRV         bool          `long:"no-srv" description:"Do not look up the _minecraft._tcp SRV record of the host"`
	Timeout       time.Duration `long:"timeout" env:"MCQUERY_TIMEOUT" description:"Timeout of the whole query" default:"2s"`
	JSON          bool          `long:"json" description:"Print the status as JSON"`
	Raw           bool          `long:"raw" description:"Print the status document as the server sent it"`
	SOCKS5        string        `long:"socks5" env:"MCQUERY_SOCKS5" description:"Connect through the SOCKS5 proxy at this address"`
	Bind          string        `long:"bind" description:"Local IP to connect from"`
	ProxyProtocol bool          `long:"proxy-protocol" description:"Send a PROXY protocol v2 header before the handshake"`

	Args struct {
		Address string `positional-arg-name:"address" description:"host[:port] of the server"`
	} `positional-args:"true" required:"true"`

	out io.Writer
}

// statusOutput is what --json prints.
type statusOutput struct {
	Address string `json:"address"`
	mc.ResponseJSON
	LatencyMillis int `json:"latencyMillis"`
}

func (cmd *statusCommand) Execute(args []string) error {
	host, port, err := query.SplitAddress(cmd.Args.Address)
	if err != nil {
		return err
	}

	dialer, err := transport.New(transport.Config{
		Timeout:           cmd.Timeout,
		LocalAddr:         cmd.Bind,
		SOCKS5:            cmd.SOCKS5,
		SendProxyProtocol: cmd.ProxyProtocol,
	})
	if err != nil {
		return err
	}

	resolver := query.NewResolver(query.Config{
		Host:       host,
		Port:       port,
		Timeout:    cmd.Timeout,
		ResolveSRV: !cmd.NoSRV,
		Dialer:     dialer,
	})
	log.Debug().Str("address", resolver.Target().Address()).Msg("querying server")

	ctx := context.Background()
	raw, err := resolver.RawStatus(ctx, cmd.Legacy)
	if err != nil {
		return err
	}
	result, err := resolver.Query(ctx, cmd.Legacy)
	if err != nil {
		return err
	}

	switch {
	case cmd.Raw:
		return printJSON(cmd.out, raw)
	case cmd.JSON:
		return printJSON(cmd.out, newStatusOutput(resolver.Target(), result))
	}
	printStatus(cmd.out, resolver.Target(), result, query.PlainDescription(raw))
	return nil
}

func newStatusOutput(target query.Target, result query.Result) statusOutput {
	var sample []mc.PlayerSampleJSON
	for _, player := range result.PlayersSample() {
		sample = append(sample, mc.PlayerSampleJSON{Name: player.Name, ID: player.ID})
	}
	favicon, _ := result.Favicon()

	return statusOutput{
		Address: target.Address(),
		ResponseJSON: mc.ResponseJSON{
			Version: mc.VersionJSON{
				Name:     result.Version(),
				Protocol: result.ProtocolVersion(),
			},
			Players: mc.PlayersJSON{
				Max:    result.MaxPlayers(),
				Online: result.OnlinePlayers(),
				Sample: sample,
			},
			Description: mc.DescriptionJSON{
				Text: result.MessageOfTheDay(),
			},
			Favicon: favicon,
		},
		LatencyMillis: result.LatencyMillis(),
	}
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printStatus(w io.Writer, target query.Target, result query.Result, description string) {
	fmt.Fprintf(w, "address:  %s\n", target.Address())
	fmt.Fprintf(w, "version:  %s (protocol %d)\n", result.Version(), result.ProtocolVersion())
	fmt.Fprintf(w, "players:  %d/%d\n", result.OnlinePlayers(), result.MaxPlayers())
	for _, player := range result.PlayersSample() {
		fmt.Fprintf(w, "          %s (%s)\n", player.Name, player.ID)
	}
	fmt.Fprintf(w, "motd:     %s\n", description)
	if _, ok := result.Favicon(); ok {
		fmt.Fprintln(w, "favicon:  yes")
	}
	fmt.Fprintf(w, "latency:  %dms\n", result.LatencyMillis())
}
