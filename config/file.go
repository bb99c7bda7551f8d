package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown config file format")

type ExporterConfigReader func() (ExporterConfig, error)

func NewExporterConfigFileReader(path string) ExporterConfigReader {
	return exporterConfigFileReader{
		path: path,
	}.Read
}

type exporterConfigFileReader struct {
	path string
}

func (reader exporterConfigFileReader) Read() (ExporterConfig, error) {
	return ReadExporterConfig(reader.path)
}

// ReadExporterConfig loads a .json, .yaml or .yml file on top of
// DefaultExporterConfig.
func ReadExporterConfig(path string) (ExporterConfig, error) {
	cfg := DefaultExporterConfig()
	bb, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(bb, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bb, &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	for i := range cfg.Targets {
		cfg.Targets[i].FilePath = path
	}
	return cfg, nil
}
