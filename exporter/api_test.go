package exporter_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/realDragonium/mcquery/config"
	"github.com/realDragonium/mcquery/exporter"
)

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := exporter.NewMetrics(reg)
	network := statusNetwork(map[string]string{"lobby.test:25565": lobbyStatus}, nil)
	poller := exporter.NewPoller(config.PollerConfig{
		Targets: []config.QueryTarget{queryTarget("lobby", "lobby.test")},
	}, metrics, network)
	if err := poller.PollOnce(context.Background()); err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}

	server := httptest.NewServer(exporter.NewHandler(reg, "/metrics", func() error { return nil }))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	bb, _ := io.ReadAll(resp.Body)
	body := string(bb)

	expected := []string{
		`mcquery_up{target="lobby"} 1`,
		`mcquery_players_online{target="lobby"} 3`,
		`mcquery_players_max{target="lobby"} 20`,
		`mcquery_protocol_version{target="lobby",version="1.20"} 763`,
		`mcquery_queries_total{result="success",target="lobby"} 1`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("expected %q in metrics output:\n%s", line, body)
		}
	}
}

func TestHandler_Reload(t *testing.T) {
	tt := []struct {
		name     string
		method   string
		err      error
		status   int
		reloaded bool
	}{
		{
			name:     "success",
			method:   http.MethodPost,
			status:   http.StatusOK,
			reloaded: true,
		},
		{
			name:     "failure",
			method:   http.MethodPost,
			err:      errors.New("broken config"),
			status:   http.StatusInternalServerError,
			reloaded: true,
		},
		{
			name:   "wrong method",
			method: http.MethodGet,
			status: http.StatusMethodNotAllowed,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			reloaded := false
			reload := func() error {
				reloaded = true
				return tc.err
			}
			handler := exporter.NewHandler(prometheus.NewRegistry(), "/metrics", reload)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, "/reload", nil))

			if rec.Code != tc.status {
				t.Errorf("expected status %d but got %d", tc.status, rec.Code)
			}
			if reloaded != tc.reloaded {
				t.Errorf("expected reloaded to be %v", tc.reloaded)
			}
		})
	}
}

func TestReloader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exporter.json")
	writeConfig := func(content string) {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	metrics := exporter.NewMetrics(prometheus.NewRegistry())
	network := statusNetwork(map[string]string{"lobby.test:25565": lobbyStatus}, nil)
	poller := exporter.NewPoller(config.PollerConfig{}, metrics, network)
	reload := exporter.Reloader(config.NewExporterConfigFileReader(path), poller)

	writeConfig(`{"queryGap": "0s", "targets": [{"name": "lobby", "address": "lobby.test", "disableSRV": true, "timeout": "1s"}]}`)
	if err := reload(); err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := poller.PollOnce(ctx); err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	if got := testutil.ToFloat64(metrics.Up.WithLabelValues("lobby")); got != 1 {
		t.Errorf("expected the reloaded target to be up but got %v", got)
	}

	writeConfig(`{"targets": []}`)
	err := reload()
	if !errors.Is(err, config.ErrNoTargets) {
		t.Errorf("expected ErrNoTargets but got: %v", err)
	}
}
