package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/realDragonium/mcquery/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup_FileOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	path := filepath.Join(t.TempDir(), "mcquery.log")

	closer, err := logger.Setup(logger.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
	})
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Str("target", "lobby").Msg("visible")
	closer.Close()

	bb, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(bb)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line but got %d: %q", len(lines), bb)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "visible" || entry["target"] != "lobby" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestSetup_Errors(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if _, err := logger.Setup(logger.Config{Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}

	output := filepath.Join(t.TempDir(), "missing", "mcquery.log")
	if _, err := logger.Setup(logger.Config{Level: "info", Output: output}); err == nil {
		t.Error("expected an error for an unwritable output")
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New("console", &buf)
	l.Error().Msg("query failed")

	out := buf.String()
	if !strings.Contains(out, "query failed") || !strings.Contains(out, "ERR") {
		t.Errorf("unexpected console output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("didnt expect colors in a buffer: %q", out)
	}
}
