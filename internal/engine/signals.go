package engine

import (
	"encoding/json"
	"log"
	"time"

	"github.com/mkrantz/psyche/internal/coherence"
	"github.com/mkrantz/psyche/internal/mood"
	"github.com/mkrantz/psyche/internal/store"
	"github.com/mkrantz/psyche/internal/temporal"
)

// eventScanLimit bounds how far back each signal fold reads.
const eventScanLimit = 500

// GatherMoodInputs derives the mood counters from the event log. The
// remaining-context fraction and partner observation count come from the
// caller; the log doesn't own them. Read failures leave the counter at zero.
func (e *Engine) GatherMoodInputs(now time.Time, contextRemaining float64, partnerObservations int) mood.Inputs {
	week := now.AddDate(0, 0, -7).UnixMilli()
	in := mood.Inputs{
		ContextRemaining:    contextRemaining,
		Learning:            e.countSince(store.EventWisdomGained, week),
		Failures:            e.countSince(store.EventWisdomChallenged, week),
		Applications:        e.countSince(store.EventWisdomApplied, week),
		PartnerObservations: partnerObservations,
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	in.SessionsToday = e.countSince(store.EventSessionStart, midnight.UnixMilli())
	return in
}

// GatherSignals assembles the coherence signals the event log can answer.
// Tensions and aspirations stay zero: those live in collaborator stores,
// and callers that own them set the fields afterwards. Read failures are
// logged and leave the affected signal empty.
func (e *Engine) GatherSignals(now time.Time) coherence.Signals {
	var sig coherence.Signals

	intentions, err := e.intentionChecks()
	if err != nil {
		log.Printf("gather signals: intentions: %v", err)
	} else {
		sig.Intentions = intentions
	}

	recalled, err := e.recalledOutcomes()
	if err != nil {
		log.Printf("gather signals: recalled outcomes: %v", err)
	} else {
		sig.Recalled = recalled
	}

	sk, err := e.selfKnowledge()
	if err != nil {
		log.Printf("gather signals: self-knowledge: %v", err)
	} else {
		sig.SelfKnowledge = sk
	}

	wu, err := e.wisdomUse(now)
	if err != nil {
		log.Printf("gather signals: wisdom use: %v", err)
	} else {
		sig.WisdomUse = wu
	}

	sig.InsightsWeek = e.countSince(store.EventInsightCrystallized, now.AddDate(0, 0, -7).UnixMilli())
	return sig
}

// countSince is CountEvents with read failures logged and zeroed.
func (e *Engine) countSince(t store.EventType, since int64) int {
	n, err := e.DB.CountEvents(t, since)
	if err != nil {
		log.Printf("gather: count %s: %v", t, err)
		return 0
	}
	return n
}

type checkPayload struct {
	Alignment *float64 `json:"alignment"`
}

type outcomePayload struct {
	Outcome string `json:"outcome"`
}

type observationPayload struct {
	Dimension string `json:"dimension"`
}

// intentionChecks folds intention.checked events into the latest alignment
// and total check count per intention. A check without an alignment in its
// payload reads as neutral 0.5.
func (e *Engine) intentionChecks() ([]coherence.IntentionCheck, error) {
	events, err := e.DB.GetEvents(store.EventQuery{Type: store.EventIntentionChecked, Limit: eventScanLimit})
	if err != nil {
		return nil, err
	}

	var order []string
	counts := make(map[string]int)
	latest := make(map[string]float64)
	for _, ev := range events {
		if ev.EntityID == "" {
			continue
		}
		if _, ok := counts[ev.EntityID]; !ok {
			order = append(order, ev.EntityID)
			alignment := 0.5
			if ev.Payload != "" {
				var p checkPayload
				if err := json.Unmarshal([]byte(ev.Payload), &p); err == nil && p.Alignment != nil {
					alignment = *p.Alignment
				}
			}
			latest[ev.EntityID] = alignment
		}
		counts[ev.EntityID]++
	}

	checks := make([]coherence.IntentionCheck, 0, len(order))
	for _, id := range order {
		checks = append(checks, coherence.IntentionCheck{
			EntityID:   id,
			Alignment:  latest[id],
			CheckCount: counts[id],
		})
	}
	return checks, nil
}

// recalledOutcomes groups wisdom.applied outcome payloads into a success
// rate per item. Applications without a recorded outcome don't count.
func (e *Engine) recalledOutcomes() ([]coherence.RecalledItem, error) {
	events, err := e.DB.GetEvents(store.EventQuery{Type: store.EventWisdomApplied, Limit: eventScanLimit})
	if err != nil {
		return nil, err
	}

	var order []string
	total := make(map[string]int)
	successes := make(map[string]int)
	for _, ev := range events {
		if ev.EntityID == "" || ev.Payload == "" {
			continue
		}
		var p outcomePayload
		if err := json.Unmarshal([]byte(ev.Payload), &p); err != nil {
			continue
		}
		switch p.Outcome {
		case "success":
			successes[ev.EntityID]++
		case "failure":
		default:
			continue
		}
		if total[ev.EntityID] == 0 {
			order = append(order, ev.EntityID)
		}
		total[ev.EntityID]++
	}

	items := make([]coherence.RecalledItem, 0, len(order))
	for _, id := range order {
		items = append(items, coherence.RecalledItem{
			EntityID:    id,
			SuccessRate: float64(successes[id]) / float64(total[id]),
		})
	}
	return items, nil
}

// selfKnowledge summarizes identity observations: distinct items, distinct
// dimensions, and how many items haven't been touched past the stale
// threshold.
func (e *Engine) selfKnowledge() (coherence.SelfKnowledge, error) {
	var sk coherence.SelfKnowledge

	observed, err := e.DB.GetEvents(store.EventQuery{Type: store.EventIdentityObserved, Limit: eventScanLimit})
	if err != nil {
		return sk, err
	}
	confirmed, err := e.DB.GetEvents(store.EventQuery{Type: store.EventIdentityConfirmed, Limit: eventScanLimit})
	if err != nil {
		return sk, err
	}

	lastSeen := make(map[string]int64)
	dimensions := make(map[string]bool)
	for _, ev := range append(observed, confirmed...) {
		if ev.EntityID == "" {
			continue
		}
		if ev.CreatedAt > lastSeen[ev.EntityID] {
			lastSeen[ev.EntityID] = ev.CreatedAt
		}
		if ev.Payload != "" {
			var p observationPayload
			if err := json.Unmarshal([]byte(ev.Payload), &p); err == nil && p.Dimension != "" {
				dimensions[p.Dimension] = true
			}
		}
	}

	sk.Items = len(lastSeen)
	sk.Dimensions = len(dimensions)
	for _, at := range lastSeen {
		if temporal.IsStale(time.UnixMilli(at).Format(time.RFC3339), e.Temporal.StaleThresholdDays) {
			sk.Stale++
		}
	}
	return sk, nil
}

// wisdomUse reports whether knowledge is being exercised: anything applied
// in the trailing 30 days, the age of the oldest item still in use, and how
// many confirmations landed in the window.
func (e *Engine) wisdomUse(now time.Time) (coherence.WisdomUse, error) {
	var wu coherence.WisdomUse

	since := now.AddDate(0, 0, -30).UnixMilli()
	applied, err := e.DB.GetEvents(store.EventQuery{Type: store.EventWisdomApplied, Since: since, Limit: eventScanLimit})
	if err != nil {
		return wu, err
	}
	if len(applied) == 0 {
		return wu, nil
	}
	wu.AppliedRecently = true

	appliedIDs := make(map[string]bool)
	for _, ev := range applied {
		if ev.EntityID != "" {
			appliedIDs[ev.EntityID] = true
		}
	}

	activity, err := e.DB.GetEntityActivity(store.EntityWisdom)
	if err != nil {
		return wu, err
	}
	var oldest int64
	for _, a := range activity {
		if !appliedIDs[a.EntityID] {
			continue
		}
		if oldest == 0 || a.FirstSeen < oldest {
			oldest = a.FirstSeen
		}
	}
	if oldest > 0 {
		wu.OldestAppliedAgeDays = int(now.Sub(time.UnixMilli(oldest)).Hours() / 24)
	}

	confirmed, err := e.DB.CountEvents(store.EventWisdomConfirmed, since)
	if err != nil {
		return wu, err
	}
	wu.ConfirmedCount = confirmed
	return wu, nil
}
