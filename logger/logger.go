// Package logger configures the global zerolog logger for the mcquery commands.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level  string `long:"log-level" env:"LOG_LEVEL" description:"Log level (trace, debug, info, warn, error)" default:"info"`
	Format string `long:"log-format" env:"LOG_FORMAT" description:"Log format (console or json)" default:"console" choice:"console" choice:"json"`
	Output string `long:"log-output" env:"LOG_OUTPUT" description:"Log output (stdout, stderr or a file path)" default:"stderr"`
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup replaces the global logger. The returned closer releases the log
// file when Output names one.
func Setup(cfg Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nopCloser{}, fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return closer, fmt.Errorf("log output: %w", err)
		}
		writer = file
		closer = file
	}

	log.Logger = New(cfg.Format, writer)
	return closer, nil
}

// New builds a logger writing in format to writer. Anything but "json" is
// written for humans.
func New(format string, writer io.Writer) zerolog.Logger {
	if format == "json" {
		return zerolog.New(writer).With().Timestamp().Logger()
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        writer,
		TimeFormat: time.RFC3339,
	}
	if f, ok := writer.(*os.File); ok {
		if os.Getenv("NO_COLOR") != "" || !isTerminal(f) {
			consoleWriter.NoColor = true
		}
	} else {
		consoleWriter.NoColor = true
	}
	return zerolog.New(consoleWriter).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
