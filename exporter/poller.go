package exporter

import (
	"context"
	"sync"
	"time"

	"github.com/realDragonium/mcquery/config"
	"github.com/realDragonium/mcquery/query"
	"github.com/realDragonium/mcquery/transport"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DialerFactory builds the dialer for one target.
type DialerFactory func(cfg transport.Config) (transport.Dialer, error)

// Poller queries its targets one after another, every round at most once per
// QueryGap, and records the outcome in Metrics.
type Poller struct {
	metrics   *Metrics
	states    *stateTracker
	newDialer DialerFactory
	lookuper  query.SRVLookuper

	mu       sync.Mutex
	cfg      config.PollerConfig
	limiter  *rate.Limiter
	updateCh chan struct{}
}

// NewPoller uses transport.New when newDialer is nil.
func NewPoller(cfg config.PollerConfig, metrics *Metrics, newDialer DialerFactory) *Poller {
	if newDialer == nil {
		newDialer = transport.New
	}
	return &Poller{
		metrics:   metrics,
		states:    newStateTracker(),
		newDialer: newDialer,
		cfg:       cfg,
		limiter:   newLimiter(cfg.QueryGap),
		updateCh:  make(chan struct{}, 1),
	}
}

func newLimiter(gap time.Duration) *rate.Limiter {
	if gap <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(gap), 1)
}

// SetSRVLookuper replaces the system resolver for targets that resolve SRV records.
func (p *Poller) SetSRVLookuper(lookuper query.SRVLookuper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookuper = lookuper
}

// Update swaps the targets. Metrics of targets that are gone are removed and
// a running poller starts a new round right away.
func (p *Poller) Update(cfg config.PollerConfig) {
	p.mu.Lock()
	current := make(map[string]bool, len(cfg.Targets))
	for _, target := range cfg.Targets {
		current[target.Name] = true
	}
	for _, target := range p.cfg.Targets {
		if !current[target.Name] {
			p.metrics.Forget(target.Name)
			p.states.forget(target.Name)
		}
	}
	p.cfg = cfg
	p.limiter = newLimiter(cfg.QueryGap)
	p.mu.Unlock()

	select {
	case p.updateCh <- struct{}{}:
	default:
	}
}

func (p *Poller) snapshot() (config.PollerConfig, *rate.Limiter, query.SRVLookuper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg, p.limiter, p.lookuper
}

// State is the outcome of the last query of target, Unknown before the first.
func (p *Poller) State(target string) ServerState {
	return p.states.get(target)
}

// PollOnce queries every target once. It only fails when ctx is done.
func (p *Poller) PollOnce(ctx context.Context) error {
	cfg, limiter, lookuper := p.snapshot()
	for _, target := range cfg.Targets {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		p.poll(ctx, target, lookuper)
	}
	return nil
}

func (p *Poller) poll(ctx context.Context, target config.QueryTarget, lookuper query.SRVLookuper) {
	dialer, err := p.newDialer(target.Transport)
	if err != nil {
		log.Error().Err(err).Str("target", target.Name).Msg("cant create dialer")
		p.metrics.ObserveFailure(target.Name, err)
		p.states.set(target.Name, Offline)
		return
	}

	resolverCfg := target.ResolverConfig(dialer)
	resolverCfg.SRVLookuper = lookuper
	resolver := query.NewResolver(resolverCfg)

	result, err := resolver.Query(ctx, target.LegacyFallback)
	if err != nil {
		log.Debug().Err(err).Str("target", target.Name).Str("address", resolver.Target().Address()).Msg("status query failed")
		p.metrics.ObserveFailure(target.Name, err)
		p.states.set(target.Name, Offline)
		return
	}

	log.Debug().
		Str("target", target.Name).
		Str("version", result.Version()).
		Int("online", result.OnlinePlayers()).
		Int("max", result.MaxPlayers()).
		Dur("latency", result.Latency()).
		Msg("status query succeeded")
	p.metrics.Observe(target.Name, result)
	p.states.set(target.Name, Online)
}

// Run polls until ctx is done, starting a round every poll interval.
func (p *Poller) Run(ctx context.Context) error {
	for {
		cfg, _, _ := p.snapshot()
		timer := time.NewTimer(cfg.Interval)

		if err := p.PollOnce(ctx); err != nil {
			timer.Stop()
			return err
		}

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-p.updateCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}
