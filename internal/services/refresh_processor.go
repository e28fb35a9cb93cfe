package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dopust/internal/amqp"
	"dopust/internal/storage"
)

// RefreshProcessorConfig holds configuration for the refresh processor
type RefreshProcessorConfig struct {
	// ScanInterval is how often to look for stale snapshots (default: 6h)
	ScanInterval time.Duration

	// SnapshotTTL is how old a snapshot may get before the scan refreshes it
	// (default: 24h)
	SnapshotTTL time.Duration
}

// DefaultRefreshProcessorConfig returns sensible defaults
func DefaultRefreshProcessorConfig() RefreshProcessorConfig {
	return RefreshProcessorConfig{
		ScanInterval: 6 * time.Hour,
		SnapshotTTL:  24 * time.Hour,
	}
}

// RefreshProcessor keeps stored snapshots fresh. It handles queued refresh
// messages and periodically re-fetches snapshots that have gone stale.
type RefreshProcessor struct {
	snapshots *SnapshotService
	store     storage.SnapshotStore
	config    RefreshProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefreshProcessor creates a new refresh processor
func NewRefreshProcessor(snapshots *SnapshotService, store storage.SnapshotStore, config RefreshProcessorConfig) *RefreshProcessor {
	return &RefreshProcessor{
		snapshots: snapshots,
		store:     store,
		config:    config,
	}
}

// Start begins the periodic stale scan. Returns an error if already running.
func (p *RefreshProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("refresh processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Refresh processor started",
		"scan_interval", p.config.ScanInterval,
		"snapshot_ttl", p.config.SnapshotTTL)

	return nil
}

// Stop gracefully stops the processor and waits for completion. The running
// flag is cleared inside the same critical section that claims the shutdown,
// so concurrent Stop calls cannot close stopCh twice.
func (p *RefreshProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Refresh processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh processor stop timed out")
		return ctx.Err()
	}

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *RefreshProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// runLoop is the main scan loop
func (p *RefreshProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	scanTicker := time.NewTicker(p.config.ScanInterval)
	defer scanTicker.Stop()

	// Scan immediately on startup
	p.scanStale(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-scanTicker.C:
			p.scanStale(ctx)
		}
	}
}

// scanStale refreshes every snapshot older than the TTL
func (p *RefreshProcessor) scanStale(ctx context.Context) {
	cutoff := time.Now().Add(-p.config.SnapshotTTL)
	keys, err := p.store.ListStale(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list stale snapshots", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	slog.InfoContext(ctx, "Refreshing stale snapshots", "count", len(keys))

	for _, key := range keys {
		// Check if we should stop
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		if err := p.snapshots.RefreshYear(ctx, key.Username, key.Year); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh stale snapshot",
				"username", key.Username,
				"year", key.Year,
				"error", err)
		}
	}
}

// HandleRefresh processes one queued refresh message. Invalid messages are
// dropped without error so they are not requeued forever.
func (p *RefreshProcessor) HandleRefresh(ctx context.Context, msg *amqp.SnapshotRefreshMessage) error {
	if msg.Username == "" || msg.Year < 2000 || msg.Year > 2100 {
		slog.WarnContext(ctx, "Dropping invalid refresh message",
			"job_id", msg.JobID,
			"username", msg.Username,
			"year", msg.Year)
		return nil
	}

	if err := p.snapshots.RefreshYear(ctx, msg.Username, msg.Year); err != nil {
		return fmt.Errorf("refresh snapshot %s/%d: %w", msg.Username, msg.Year, err)
	}
	return nil
}
