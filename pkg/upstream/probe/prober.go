package probe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"calliope-hq/calliope/pkg/upstream"

	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single probe when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// ModelLister is the slice of the upstream client the prober needs.
type ModelLister interface {
	ListModels(ctx context.Context, apiKey string) (*upstream.ModelList, error)
}

// KeySource resolves the upstream API key for probe calls.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// MetricsRecorder receives probe outcomes. A nil recorder disables recording.
type MetricsRecorder interface {
	RecordProbe(success bool, duration time.Duration)
}

// Config contains the prober configuration.
type Config struct {
	// Schedule is a cron expression (five fields or a descriptor such as
	// "@every 1m"). Empty disables the prober.
	Schedule string

	// Timeout bounds each probe call. Default: DefaultTimeout.
	Timeout time.Duration
}

// Status is a snapshot of the last probe outcome.
type Status struct {
	// Healthy reports whether the last probe succeeded.
	Healthy bool

	// LastCheck is when the last probe completed.
	LastCheck time.Time

	// LastSuccess is when the last successful probe completed.
	LastSuccess time.Time

	// LastError is the text of the last failure, empty when healthy.
	LastError string

	// Latency is the duration of the last probe.
	Latency time.Duration

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int
}

// Prober checks upstream reachability on a cron schedule by listing models,
// the cheapest authenticated call the API offers. The readiness endpoint
// consumes its snapshot.
type Prober struct {
	client  ModelLister
	keys    KeySource
	config  *Config
	cron    *cron.Cron
	logger  *slog.Logger
	metrics MetricsRecorder

	mu      sync.RWMutex
	status  Status
	running bool
}

// NewProber creates a prober. metrics may be nil.
func NewProber(client ModelLister, keys KeySource, cfg *Config, metrics MetricsRecorder) *Prober {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Prober{
		client:  client,
		keys:    keys,
		config:  cfg,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "upstream.probe"),
		metrics: metrics,
		// Start optimistic so readiness does not flap while the first
		// probe is in flight.
		status: Status{Healthy: true},
	}
}

// Start begins scheduled probing. An immediate probe runs first so the
// snapshot reflects reality within one probe timeout of startup. If the
// schedule is empty the prober does nothing.
func (p *Prober) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" {
		p.logger.Info("probe schedule not configured, skipping prober")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", p.config.Schedule, err)
	}

	if _, err := p.cron.AddFunc(p.config.Schedule, func() {
		p.runProbe(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule probe: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("upstream prober started",
		"schedule", p.config.Schedule,
		"timeout", p.config.Timeout.String(),
	)

	go p.runProbe(ctx)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// runProbe executes a single probe and updates the snapshot.
func (p *Prober) runProbe(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	err := p.probe(checkCtx)
	latency := time.Since(start)

	p.update(err, latency)

	if p.metrics != nil {
		p.metrics.RecordProbe(err == nil, latency)
	}

	if err != nil {
		p.logger.Error("upstream probe failed",
			"error", err,
			"latency_ms", latency.Milliseconds(),
		)
		return
	}
	p.logger.Debug("upstream probe passed", "latency_ms", latency.Milliseconds())
}

// probe performs the reachability call.
func (p *Prober) probe(ctx context.Context) error {
	key, err := p.keys.APIKey(ctx)
	if err != nil {
		return fmt.Errorf("credential unavailable: %w", err)
	}

	list, err := p.client.ListModels(ctx, key)
	if err != nil {
		return err
	}
	if len(list.Models) == 0 {
		return fmt.Errorf("model listing returned no models")
	}
	return nil
}

// update records a probe outcome in the snapshot.
func (p *Prober) update(err error, latency time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wasFailing := p.status.ConsecutiveFailures > 0

	p.status.LastCheck = time.Now()
	p.status.Latency = latency

	if err == nil {
		p.status.Healthy = true
		p.status.LastSuccess = p.status.LastCheck
		p.status.LastError = ""
		p.status.ConsecutiveFailures = 0
		if wasFailing {
			p.logger.Info("upstream marked reachable")
		}
		return
	}

	p.status.Healthy = false
	p.status.LastError = err.Error()
	p.status.ConsecutiveFailures++
}

// Status returns a copy of the last probe snapshot.
func (p *Prober) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Healthy reports whether the last probe succeeded.
func (p *Prober) Healthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status.Healthy
}

// IsRunning reports whether the scheduler is active.
func (p *Prober) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// NextRun returns the next scheduled probe time, or nil when not running.
func (p *Prober) NextRun() *time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// Stop halts the scheduler and waits for a running probe to finish. The
// drain happens outside the lock because a running probe needs it to record
// its outcome.
func (p *Prober) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	ctx := p.cron.Stop()
	<-ctx.Done()
	p.logger.Info("upstream prober stopped")
}
