package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cloudflare/tableflip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/realDragonium/mcquery/config"
	"github.com/realDragonium/mcquery/exporter"
	"github.com/rs/zerolog/log"
)

type exporterCommand struct {
	Config  string `short:"c" long:"config" env:"MCQUERY_CONFIG" description:"Path to the exporter config (.json, .yaml or .yml)" required:"true"`
	Listen  string `long:"listen" env:"MCQUERY_LISTEN" description:"Address to serve metrics on, overrides listenTo"`
	PidFile string `long:"pid-file" env:"MCQUERY_PID_FILE" description:"Pid file used for hot swapping, overrides pidFile"`
}

func (cmd *exporterCommand) readConfig() (config.ExporterConfig, error) {
	cfg, err := config.ReadExporterConfig(cmd.Config)
	if err != nil {
		return cfg, err
	}
	if cmd.Listen != "" {
		cfg.ListenTo = cmd.Listen
	}
	if cmd.PidFile != "" {
		cfg.PidFile = cmd.PidFile
	}
	return cfg, nil
}

func (cmd *exporterCommand) Execute(args []string) error {
	cfg, err := cmd.readConfig()
	if err != nil {
		return err
	}
	if errs := config.VerifyConfig(cfg); len(errs) != 0 {
		for _, err := range errs {
			log.Error().Err(err).Str("config", cmd.Config).Msg("invalid config")
		}
		return errors.Join(errs...)
	}
	pollerCfg, err := config.NewPollerConfig(cfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	poller := exporter.NewPoller(pollerCfg, exporter.NewMetrics(reg), nil)

	useHotSwap := cfg.EnableHotSwap && runtime.GOOS != "windows"
	var upg *tableflip.Upgrader
	var ln net.Listener
	if useHotSwap {
		upg, ln, err = tableflipListener(cfg)
		if err != nil {
			return err
		}
		defer upg.Stop()
	} else {
		ln, err = net.Listen("tcp", cfg.ListenTo)
		if err != nil {
			return err
		}
	}

	reload := exporter.Reloader(cmd.readConfig, poller)
	httpServer := &http.Server{
		Handler:      exporter.NewHandler(reg, cfg.MetricsPath, reload),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("poller stopped")
		}
	}()
	go func() {
		log.Info().Str("address", ln.Addr().String()).Str("path", cfg.MetricsPath).Int("targets", len(pollerCfg.Targets)).Msg("serving metrics")
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
			cancel()
		}
	}()

	if upg != nil {
		if err := upg.Ready(); err != nil {
			return err
		}
		select {
		case <-upg.Exit():
			log.Info().Msg("handing over to the upgraded process")
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}

	log.Info().Msg("shutting down exporter")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("metrics server forced to shut down")
	}
	return nil
}

// tableflipListener lets a new binary take over the listener on SIGHUP.
func tableflipListener(cfg config.ExporterConfig) (*tableflip.Upgrader, net.Listener, error) {
	upg, err := tableflip.New(tableflip.Options{
		PIDFile: cfg.PidFile,
	})
	if err != nil {
		return nil, nil, err
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP)
		for range sig {
			if err := upg.Upgrade(); err != nil {
				log.Error().Err(err).Msg("upgrade failed")
			}
		}
	}()

	ln, err := upg.Listen("tcp", cfg.ListenTo)
	if err != nil {
		upg.Stop()
		return nil, nil, err
	}
	return upg, ln, nil
}
