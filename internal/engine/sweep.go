package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/mkrantz/psyche/internal/store"
)

// SweepCandidates scans entity activity for knowledge that has gone quiet
// and queues it for surfacing. An entity qualifies when its last event is
// older than ProactiveThresholdDays, that event wasn't terminal, and the
// entity wasn't already surfaced inside the window. Dismissed entries stay
// dismissed until something re-queues them explicitly. Returns the number
// queued.
func (e *Engine) SweepCandidates(now time.Time) (int, error) {
	activity, err := e.DB.GetEntityActivity(
		store.EntityWisdom, store.EntityBelief, store.EntityIdentity, store.EntityIntention)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	cutoff := now.AddDate(0, 0, -e.Temporal.ProactiveThresholdDays).UnixMilli()
	queued := 0
	for _, a := range activity {
		if a.LastSeen >= cutoff {
			continue
		}
		if terminal(a.LastType) {
			continue
		}

		entry, err := e.DB.GetQueueEntry(a.EntityType, a.EntityID)
		if err != nil {
			log.Printf("sweep: queue entry %s/%s: %v", a.EntityType, a.EntityID, err)
			continue
		}
		if entry != nil {
			if entry.Dismissed {
				continue
			}
			if entry.SurfacedAt == nil {
				continue // already pending
			}
			if *entry.SurfacedAt >= cutoff {
				continue
			}
		}

		idleDays := int(now.Sub(time.UnixMilli(a.LastSeen)).Hours() / 24)
		reason := fmt.Sprintf("no activity for %d days", idleDays)
		if err := e.DB.QueueItem(a.EntityType, a.EntityID, reason, store.DefaultQueuePriority); err != nil {
			return queued, fmt.Errorf("sweep: %w", err)
		}
		queued++
	}
	return queued, nil
}

// terminal reports whether an entity's story is over. Fulfilled and
// abandoned things don't get resurfaced.
func terminal(t store.EventType) bool {
	switch t {
	case store.EventIntentionFulfilled, store.EventIntentionAbandoned, store.EventBeliefAbandoned:
		return true
	}
	return false
}

// StartSweepTimer sweeps on startup and then daily. Session-end hooks
// already sweep, so this only matters for long-running servers that
// outlive their sessions.
func (e *Engine) StartSweepTimer() {
	if queued, err := e.SweepCandidates(time.Now()); err != nil {
		log.Printf("sweep error: %v", err)
	} else if queued > 0 {
		log.Printf("sweep: queued %d candidates", queued)
	}

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if queued, err := e.SweepCandidates(time.Now()); err != nil {
					log.Printf("sweep error: %v", err)
				} else if queued > 0 {
					log.Printf("sweep: queued %d candidates", queued)
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop shuts down the engine's background goroutines.
func (e *Engine) Stop() {
	close(e.stopCh)
}
