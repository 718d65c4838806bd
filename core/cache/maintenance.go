package cache

import (
	"errors"
	"time"

	"codex-manager/core/codex"

	"go.uber.org/zap"
)

// Eviction reasons reported by PerformMaintenance.
const (
	ReasonExpired   = "expired"
	ReasonSizeLimit = "size_limit"
)

// ErrMaintenanceRunning is returned when the maintenance loop is started
// twice without an intervening stop.
var ErrMaintenanceRunning = errors.New("maintenance loop already running")

// MaintenanceReport describes what one maintenance pass removed.
type MaintenanceReport struct {
	// Expired lists record types removed because they outlived the entry
	// TTL, regardless of access recency.
	Expired []codex.RecordType `json:"expired"`
	// Evicted lists record types removed afterwards to respect the entry
	// capacity bound.
	Evicted []codex.RecordType `json:"evicted"`
}

// Removed returns the total number of entries the pass removed.
func (r MaintenanceReport) Removed() int {
	return len(r.Expired) + len(r.Evicted)
}

// PerformMaintenance expires every entry older than the max entry age, then
// evicts further if the cache is still over capacity. The size pass is
// bounded by the entry count at its start, so a strategy that can make no
// progress reports partial completion instead of looping forever.
func (c *DataCache) PerformMaintenance() MaintenanceReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := MaintenanceReport{
		Expired: []codex.RecordType{},
		Evicted: []codex.RecordType{},
	}
	now := c.now()

	for key, e := range c.entries {
		if now.Sub(e.loadedAt) >= c.maxEntryAge {
			delete(c.entries, key)
			delete(c.access, key)
			c.flight.Forget(string(key))
			c.evicted++
			report.Expired = append(report.Expired, key)
		}
	}

	for bound := len(c.entries); bound > 0 && len(c.entries) > c.maxEntries; bound-- {
		victim, ok := c.evictOneLocked()
		if !ok {
			break
		}
		report.Evicted = append(report.Evicted, victim)
	}

	if report.Removed() > 0 {
		c.logger.Info("Cache maintenance pass completed",
			zap.Int("expired", len(report.Expired)),
			zap.Int("size_evicted", len(report.Evicted)),
			zap.Int("remaining", len(c.entries)),
		)
	}
	return report
}

// StartMaintenance launches the periodic maintenance loop. It returns
// ErrMaintenanceRunning if the loop is already active.
func (c *DataCache) StartMaintenance(interval time.Duration) error {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.stop != nil {
		return ErrMaintenanceRunning
	}
	if interval <= 0 {
		interval = time.Minute
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.maintenanceLoop(interval, c.stop, c.done)
	return nil
}

// StopMaintenance stops the loop and returns only after the loop goroutine
// has exited, guaranteeing no maintenance tick fires after it returns.
// Stopping a loop that was never started is a no-op.
func (c *DataCache) StopMaintenance() {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.stop == nil {
		return
	}
	close(c.stop)
	<-c.done
	c.stop = nil
	c.done = nil
}

func (c *DataCache) maintenanceLoop(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.PerformMaintenance()
		}
	}
}
