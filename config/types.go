package config

import (
	"time"

	"github.com/realDragonium/mcquery/query"
	"github.com/realDragonium/mcquery/transport"
)

// TargetConfig is one server the exporter polls, as written in the config file.
type TargetConfig struct {
	FilePath string `json:"-" yaml:"-"`
	// Name labels the metrics of this target, the address is used when empty.
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	Timeout string `json:"timeout" yaml:"timeout"`

	DisableSRV     bool `json:"disableSRV" yaml:"disableSRV"`
	LegacyFallback bool `json:"legacyFallback" yaml:"legacyFallback"`

	SOCKS5            string `json:"socks5" yaml:"socks5"`
	Bind              string `json:"bind" yaml:"bind"`
	SendProxyProtocol bool   `json:"sendProxyProtocol" yaml:"sendProxyProtocol"`
}

type ExporterConfig struct {
	ListenTo     string `json:"listenTo" yaml:"listenTo"`
	MetricsPath  string `json:"metricsPath" yaml:"metricsPath"`
	PollInterval string `json:"pollInterval" yaml:"pollInterval"`
	// QueryGap is the minimum time between two queries of one poll round.
	QueryGap       string `json:"queryGap" yaml:"queryGap"`
	DefaultTimeout string `json:"defaultTimeout" yaml:"defaultTimeout"`

	EnableHotSwap bool   `json:"enableHotSwap" yaml:"enableHotSwap"`
	PidFile       string `json:"pidFile" yaml:"pidFile"`

	Targets []TargetConfig `json:"targets" yaml:"targets"`
}

func DefaultExporterConfig() ExporterConfig {
	return ExporterConfig{
		ListenTo:       ":9150",
		MetricsPath:    "/metrics",
		PollInterval:   "15s",
		QueryGap:       "100ms",
		DefaultTimeout: "2s",
		EnableHotSwap:  false,
		PidFile:        "/var/run/mcquery.pid",
	}
}

// QueryTarget is a TargetConfig with its durations and address parsed.
type QueryTarget struct {
	Name           string
	Host           string
	Port           uint16
	Timeout        time.Duration
	ResolveSRV     bool
	LegacyFallback bool
	Transport      transport.Config
}

func (target QueryTarget) ResolverConfig(dialer transport.Dialer) query.Config {
	return query.Config{
		Host:       target.Host,
		Port:       target.Port,
		Timeout:    target.Timeout,
		ResolveSRV: target.ResolveSRV,
		Dialer:     dialer,
	}
}

type PollerConfig struct {
	Interval time.Duration
	QueryGap time.Duration
	Targets  []QueryTarget
}

func NewPollerConfig(cfg ExporterConfig) (PollerConfig, error) {
	var pollerCfg PollerConfig
	var err error

	pollerCfg.Interval, err = time.ParseDuration(cfg.PollInterval)
	if err != nil {
		return pollerCfg, &InvalidField{Field: "pollInterval", Err: err}
	}
	pollerCfg.QueryGap, err = time.ParseDuration(cfg.QueryGap)
	if err != nil {
		return pollerCfg, &InvalidField{Field: "queryGap", Err: err}
	}
	defaultTimeout, err := time.ParseDuration(cfg.DefaultTimeout)
	if err != nil {
		return pollerCfg, &InvalidField{Field: "defaultTimeout", Err: err}
	}

	for _, targetCfg := range cfg.Targets {
		target, err := NewQueryTarget(targetCfg, defaultTimeout)
		if err != nil {
			return pollerCfg, err
		}
		pollerCfg.Targets = append(pollerCfg.Targets, target)
	}
	return pollerCfg, nil
}

func NewQueryTarget(cfg TargetConfig, defaultTimeout time.Duration) (QueryTarget, error) {
	host, port, err := query.SplitAddress(cfg.Address)
	if err != nil {
		return QueryTarget{}, &InvalidTarget{Name: cfg.targetName(), Err: err}
	}

	timeout := defaultTimeout
	if cfg.Timeout != "" {
		timeout, err = time.ParseDuration(cfg.Timeout)
		if err != nil {
			return QueryTarget{}, &InvalidTarget{Name: cfg.targetName(), Err: err}
		}
	}

	return QueryTarget{
		Name:           cfg.targetName(),
		Host:           host,
		Port:           port,
		Timeout:        timeout,
		ResolveSRV:     !cfg.DisableSRV,
		LegacyFallback: cfg.LegacyFallback,
		Transport: transport.Config{
			Timeout:           timeout,
			LocalAddr:         cfg.Bind,
			SOCKS5:            cfg.SOCKS5,
			SendProxyProtocol: cfg.SendProxyProtocol,
		},
	}, nil
}

func (cfg TargetConfig) targetName() string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return cfg.Address
}
