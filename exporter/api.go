package exporter

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/realDragonium/mcquery/config"
	"github.com/rs/zerolog/log"
)

// NewHandler serves the metrics of gatherer on metricsPath and reloads the
// target list on /reload.
func NewHandler(gatherer prometheus.Gatherer, metricsPath string, reload func() error) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/reload", reloadHandler(reload))
	return mux
}

func reloadHandler(reload func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := reload(); err != nil {
			log.Error().Err(err).Msg("reload failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "success")
	}
}

// Reloader reads the config again and hands the new targets to poller.
func Reloader(reader config.ExporterConfigReader, poller *Poller) func() error {
	return func() error {
		cfg, err := reader()
		if err != nil {
			return err
		}
		if errs := config.VerifyConfig(cfg); len(errs) != 0 {
			return errors.Join(errs...)
		}
		pollerCfg, err := config.NewPollerConfig(cfg)
		if err != nil {
			return err
		}
		poller.Update(pollerCfg)
		log.Info().Int("targets", len(pollerCfg.Targets)).Msg("config reloaded")
		return nil
	}
}
