package http

import (
	"sync"
	"time"

	"drivelogger/internal/flow"
	"drivelogger/internal/store"
)

// flowRegistry hands out one reconciliation flow per authenticated owner.
// Entries unused for a while are dropped so abandoned dialogs do not pin
// memory; the next request simply gets a fresh idle flow.
type flowRegistry struct {
	mu           sync.Mutex
	flows        map[string]*flowEntry
	updater      store.RecordUpdater
	deleter      store.RecordDeleter
	minCents     int64
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type flowEntry struct {
	flow     *flow.Flow
	lastUsed time.Time
}

func newFlowRegistry(updater store.RecordUpdater, deleter store.RecordDeleter, minCents int64) *flowRegistry {
	fr := &flowRegistry{
		flows:       make(map[string]*flowEntry),
		updater:     updater,
		deleter:     deleter,
		minCents:    minCents,
		stopCleanup: make(chan struct{}),
	}
	go fr.startCleanup()
	return fr
}

// get returns the owner's flow, creating one on first use.
func (fr *flowRegistry) get(ownerID string) *flow.Flow {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	entry, exists := fr.flows[ownerID]
	if !exists {
		entry = &flowEntry{flow: flow.New(fr.updater, fr.deleter, fr.minCents)}
		fr.flows[ownerID] = entry
	}
	entry.lastUsed = time.Now()
	return entry.flow
}

// startCleanup runs periodic cleanup to remove stale flow entries
func (fr *flowRegistry) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fr.cleanupStaleEntries()
		case <-fr.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes flows untouched for 30 minutes
func (fr *flowRegistry) cleanupStaleEntries() {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	cutoff := time.Now().Add(-30 * time.Minute)
	for owner, entry := range fr.flows {
		if entry.lastUsed.Before(cutoff) {
			delete(fr.flows, owner)
		}
	}
}

// stop gracefully shuts down the registry cleanup goroutine
func (fr *flowRegistry) stop() {
	fr.shutdownOnce.Do(func() {
		if fr.stopCleanup != nil {
			close(fr.stopCleanup)
		}
	})
}
