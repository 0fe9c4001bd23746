package engine

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/mkrantz/psyche/internal/coherence"
	"github.com/mkrantz/psyche/internal/mood"
	"github.com/mkrantz/psyche/internal/store"
	"github.com/mkrantz/psyche/internal/temporal"
)

// Engine ties the synthesizers to the store: it gathers counters and
// signals from the event log, computes mood and coherence, and persists
// the results.
type Engine struct {
	DB       *store.DB
	Temporal temporal.Config

	stopCh chan struct{}
}

// New creates a new Engine.
func New(db *store.DB, cfg temporal.Config) *Engine {
	return &Engine{DB: db, Temporal: cfg, stopCh: make(chan struct{})}
}

// historyWindow bounds how many past measurements feed the developmental
// signals: 5 recent plus up to 10 older.
const historyWindow = 15

// shiftThreshold is the coherence move that gets its own event.
const shiftThreshold = 0.1

// Measure synthesizes mood and computes coherence without persisting
// anything. History and peak reads that fail are logged and treated as
// empty, so the result is always usable.
func (e *Engine) Measure(in mood.Inputs, sig coherence.Signals) coherence.State {
	m := mood.Synthesize(in)

	snapshots, err := e.DB.RecentCoherence(historyWindow)
	if err != nil {
		log.Printf("measure: read history: %v", err)
		snapshots = nil
	}
	history := make([]float64, 0, len(snapshots))
	for _, s := range snapshots {
		history = append(history, s.Value)
	}

	peak, err := e.DB.PeakCoherence()
	if err != nil {
		log.Printf("measure: read peak: %v", err)
		peak = 0
	}

	return coherence.Compute(m, sig, history, peak, time.Now())
}

// MeasureAndRecord measures, appends the snapshot to history, and logs a
// coherence.measured event carrying the full state as payload. When the
// value moved at least 0.1 from the previous snapshot it also logs
// coherence.shift.
func (e *Engine) MeasureAndRecord(in mood.Inputs, sig coherence.Signals, sessionID int64) (coherence.State, error) {
	prev, err := e.DB.LatestCoherence()
	if err != nil {
		log.Printf("measure: read previous: %v", err)
		prev = nil
	}

	state := e.Measure(in, sig)

	if _, err := e.DB.AppendCoherence(toSnapshot(state)); err != nil {
		return state, fmt.Errorf("record coherence: %w", err)
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return state, fmt.Errorf("encode coherence payload: %w", err)
	}
	value := state.Value
	if _, err := e.DB.LogEvent(store.Event{
		Type:      store.EventCoherenceMeasured,
		Payload:   string(payload),
		Coherence: &value,
		SessionID: sessionID,
	}); err != nil {
		return state, fmt.Errorf("log measurement: %w", err)
	}

	if prev != nil && math.Abs(state.Value-prev.Value) >= shiftThreshold {
		shift, _ := json.Marshal(map[string]float64{"from": prev.Value, "to": state.Value})
		if _, err := e.DB.LogEvent(store.Event{
			Type:      store.EventCoherenceShift,
			Payload:   string(shift),
			Coherence: &value,
			SessionID: sessionID,
		}); err != nil {
			return state, fmt.Errorf("log shift: %w", err)
		}
	}

	return state, nil
}

func toSnapshot(s coherence.State) store.CoherenceSnapshot {
	return store.CoherenceSnapshot{
		Value:          s.Value,
		Clarity:        s.Instant.Clarity,
		Growth:         s.Instant.Growth,
		Engagement:     s.Instant.Engagement,
		Connection:     s.Instant.Connection,
		Energy:         s.Instant.Energy,
		Alignment:      s.Instant.Alignment,
		Trajectory:     s.Developmental.Trajectory,
		Stability:      s.Developmental.Stability,
		PeakRatio:      s.Developmental.PeakRatio,
		SelfKnowledge:  s.Meta.SelfKnowledge,
		WisdomDepth:    s.Meta.WisdomDepth,
		Integration:    s.Meta.Integration,
		Interpretation: s.Interpretation,
		CreatedAt:      s.Timestamp,
	}
}
