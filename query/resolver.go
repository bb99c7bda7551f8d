// Package query retrieves the status of a Minecraft server: version, players,
// message of the day, favicon and latency.
//
// A Resolver queries one server. It speaks the modern Server List Ping and can
// fall back to the legacy ping for servers that predate it.
package query

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/realDragonium/mcquery/transport"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPort    uint16 = 25565
	DefaultTimeout        = 2 * time.Second
)

// Target is the server a Resolver talks to.
type Target struct {
	Host    string
	Port    uint16
	Timeout time.Duration
}

func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

type Config struct {
	Host       string
	Port       uint16
	Timeout    time.Duration
	ResolveSRV bool

	// Dialer defaults to a plain TCP dialer.
	Dialer transport.Dialer
	// SRVLookuper defaults to a DNSLookuper using the system nameserver.
	SRVLookuper SRVLookuper
}

// Resolver is not safe for concurrent use. Use one per server.
type Resolver struct {
	target Target
	dialer transport.Dialer

	raw    RawStatus
	cached bool
}

// New creates a Resolver for host:port. A zero port or timeout takes the
// default. With resolveSRV the _minecraft._tcp record of host is looked up
// before New returns and replaces host and port when one exists.
func New(host string, port uint16, timeout time.Duration, resolveSRV bool) *Resolver {
	return NewResolver(Config{
		Host:       host,
		Port:       port,
		Timeout:    timeout,
		ResolveSRV: resolveSRV,
	})
}

// NewFromAddress splits address into host and port, the port defaulting to 25565.
func NewFromAddress(address string, timeout time.Duration, resolveSRV bool) (*Resolver, error) {
	host, port, err := SplitAddress(address)
	if err != nil {
		return nil, err
	}
	return New(host, port, timeout, resolveSRV), nil
}

// SplitAddress splits "host:port" on its colon. Without a port segment the
// default port is returned.
func SplitAddress(address string) (string, uint16, error) {
	parts := strings.Split(address, ":")
	if len(parts) < 2 {
		return parts[0], DefaultPort, nil
	}
	port, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in address %q: %w", address, err)
	}
	return parts[0], uint16(port), nil
}

func NewResolver(cfg Config) *Resolver {
	target := Target{
		Host:    cfg.Host,
		Port:    cfg.Port,
		Timeout: cfg.Timeout,
	}
	if target.Port == 0 {
		target.Port = DefaultPort
	}
	if target.Timeout <= 0 {
		target.Timeout = DefaultTimeout
	}

	dialer := cfg.Dialer
	if dialer == nil {
		dialer = transport.Basic(target.Timeout, "")
	}

	if cfg.ResolveSRV {
		lookuper := cfg.SRVLookuper
		if lookuper == nil {
			lookuper = DNSLookuper{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), target.Timeout)
		if host, port, ok := LookupSRV(ctx, lookuper, target.Host); ok {
			target.Host = host
			target.Port = port
		}
		cancel()
	}

	return &Resolver{
		target: target,
		dialer: dialer,
	}
}

func (r *Resolver) Target() Target {
	return r.target
}

// Query returns the normalized status of the server. The first successful
// query is kept, later calls do not touch the network. With tryLegacyFallback
// a failed modern query is retried once with the legacy ping.
func (r *Resolver) Query(ctx context.Context, tryLegacyFallback bool) (Result, error) {
	raw, err := r.status(ctx, tryLegacyFallback)
	if err != nil {
		return Result{}, err
	}
	return ResultFromRaw(raw), nil
}

// RawStatus is Query without normalization, for fields Result does not carry.
// The returned map is a copy.
func (r *Resolver) RawStatus(ctx context.Context, tryLegacyFallback bool) (RawStatus, error) {
	raw, err := r.status(ctx, tryLegacyFallback)
	if err != nil {
		return nil, err
	}
	return raw.clone(), nil
}

func (r *Resolver) status(ctx context.Context, tryLegacyFallback bool) (RawStatus, error) {
	if r.cached {
		return r.raw, nil
	}

	raw, err := QueryModern(ctx, r.dialer, r.target)
	if err != nil && tryLegacyFallback {
		log.Debug().Err(err).Str("address", r.target.Address()).Msg("status query failed, trying legacy ping")
		raw, err = PingLegacy(ctx, r.dialer, r.target)
	}
	if err != nil {
		return nil, err
	}

	r.raw = raw
	r.cached = true
	return r.raw, nil
}
