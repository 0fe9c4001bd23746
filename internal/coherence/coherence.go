package coherence

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mkrantz/psyche/internal/mood"
)

// Weights of the three sub-scores in the final value.
const (
	instantWeight       = 0.5
	developmentalWeight = 0.25
	metaWeight          = 0.25
)

// minHistory is how many persisted measurements the developmental signals
// need before they say anything other than neutral.
const minHistory = 3

// IntentionCheck is the latest alignment reading for one intention.
type IntentionCheck struct {
	EntityID   string  `json:"entity_id"`
	Alignment  float64 `json:"alignment"`
	CheckCount int     `json:"check_count"`
}

// RecalledItem is a knowledge item with a recorded outcome history. Callers
// pass only items that actually have outcomes.
type RecalledItem struct {
	EntityID    string  `json:"entity_id"`
	SuccessRate float64 `json:"success_rate"`
}

// Aspirations summarizes the active aspiration set.
type Aspirations struct {
	Count       int  `json:"count"`
	AnyProgress bool `json:"any_progress"`
	AnyRealized bool `json:"any_realized"`
}

// SelfKnowledge summarizes accumulated self-observations: how many, across
// how many dimensions, and how many have gone stale.
type SelfKnowledge struct {
	Items      int `json:"items"`
	Dimensions int `json:"dimensions"`
	Stale      int `json:"stale"`
}

// WisdomUse summarizes how accumulated knowledge is being exercised.
// OldestAppliedAgeDays is the age of the oldest item that was still applied
// inside the trailing 30 days; ConfirmedCount counts outcome-confirmed
// applications in the same window.
type WisdomUse struct {
	AppliedRecently      bool `json:"applied_recently"`
	OldestAppliedAgeDays int  `json:"oldest_applied_age_days"`
	ConfirmedCount       int  `json:"confirmed_count"`
}

// Signals carries everything the aggregator reads from collaborators.
// The zero value is a valid "nothing known" input.
type Signals struct {
	Intentions    []IntentionCheck `json:"intentions,omitempty"`
	Recalled      []RecalledItem   `json:"recalled,omitempty"`
	Tensions      int              `json:"tensions"`
	Aspirations   Aspirations      `json:"aspirations"`
	SelfKnowledge SelfKnowledge    `json:"self_knowledge"`
	WisdomUse     WisdomUse        `json:"wisdom_use"`
	InsightsWeek  int              `json:"insights_week"`
}

// Instant holds the six instantaneous signals.
type Instant struct {
	Clarity    float64 `json:"clarity"`
	Growth     float64 `json:"growth"`
	Engagement float64 `json:"engagement"`
	Connection float64 `json:"connection"`
	Energy     float64 `json:"energy"`
	Alignment  float64 `json:"alignment"`
}

// Developmental holds the history-derived signals.
type Developmental struct {
	Trajectory float64 `json:"trajectory"`
	Stability  float64 `json:"stability"`
	PeakRatio  float64 `json:"peak_ratio"`
}

// Meta holds the self-reflective signals.
type Meta struct {
	SelfKnowledge float64 `json:"self_knowledge"`
	WisdomDepth   float64 `json:"wisdom_depth"`
	Integration   float64 `json:"integration"`
}

// State is one coherence measurement.
type State struct {
	Value          float64       `json:"value"`
	Instant        Instant       `json:"instant"`
	Developmental  Developmental `json:"developmental"`
	Meta           Meta          `json:"meta"`
	Interpretation string        `json:"interpretation"`
	Timestamp      int64         `json:"timestamp"`
}

// Compute aggregates mood, collaborator signals, and persisted history into
// a coherence value. history is prior values newest-first; peak is the
// highest value ever recorded (0 when there is none). Always returns a
// value in [0,1] no matter how empty the inputs are.
func Compute(m mood.State, sig Signals, history []float64, peak float64, now time.Time) State {
	instant := Instant{
		Clarity:    m.Clarity.Score(),
		Growth:     m.Growth.Score(),
		Engagement: m.Engagement.Score(),
		Connection: m.Connection.Score(),
		Energy:     m.Energy.Score(),
		Alignment:  alignmentSignal(sig),
	}
	instantScore := combineInstant(instant)

	dev := developmentalSignals(history, instantScore, peak)
	devScore := (dev.Trajectory + dev.Stability + dev.PeakRatio) / 3

	meta := Meta{
		SelfKnowledge: selfKnowledgeSignal(sig.SelfKnowledge),
		WisdomDepth:   wisdomDepthSignal(sig.WisdomUse),
		Integration:   integrationSignal(sig.InsightsWeek),
	}
	metaScore := (meta.SelfKnowledge + meta.WisdomDepth + meta.Integration) / 3

	value := instantWeight*instantScore + developmentalWeight*devScore + metaWeight*metaScore
	value = math.Round(value*100) / 100

	return State{
		Value:          value,
		Instant:        instant,
		Developmental:  dev,
		Meta:           meta,
		Interpretation: interpret(value, instant),
		Timestamp:      now.UnixMilli(),
	}
}

// combineInstant blends the six signals so the weakest one dominates: a
// single collapsed dimension drags the whole score down.
func combineInstant(i Instant) float64 {
	signals := []float64{i.Clarity, i.Growth, i.Engagement, i.Connection, i.Energy, i.Alignment}
	lowest := signals[0]
	sum := 0.0
	for _, s := range signals {
		if s < lowest {
			lowest = s
		}
		sum += s
	}
	return 0.6*lowest + 0.4*sum/float64(len(signals))
}

// alignmentSignal prefers checked intentions, falls back to recalled
// outcomes, then to a neutral default colored by aspirations. Tensions
// subtract 0.1 each, floored at 0.2.
func alignmentSignal(sig Signals) float64 {
	var score float64
	var checked int
	for _, in := range sig.Intentions {
		if in.CheckCount >= 1 {
			score += in.Alignment
			checked++
		}
	}

	switch {
	case checked > 0:
		score /= float64(checked)
	case len(sig.Recalled) > 0:
		for _, r := range sig.Recalled {
			score += r.SuccessRate
		}
		score /= float64(len(sig.Recalled))
	default:
		score = 0.5
		if sig.Aspirations.AnyRealized {
			score = 0.7
		} else if sig.Aspirations.AnyProgress {
			score = 0.6
		}
	}

	score -= 0.1 * float64(sig.Tensions)
	if score < 0.2 {
		score = 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// developmentalSignals reads the persisted history. Fewer than minHistory
// records means insufficient history, not zero: everything defaults to the
// neutral midpoint.
func developmentalSignals(history []float64, instant, peak float64) Developmental {
	if len(history) < minHistory {
		return Developmental{Trajectory: 0.5, Stability: 0.5, PeakRatio: 0.5}
	}

	recent := history
	if len(recent) > 5 {
		recent = recent[:5]
	}
	older := history[len(recent):]
	if len(older) > 10 {
		older = older[:10]
	}

	trajectory := 0.5
	if len(older) > 0 {
		delta := mean(recent) - mean(older)
		switch {
		case delta > 0.1:
			trajectory = 1.0
		case delta > 0:
			trajectory = 0.7
		case delta < -0.1:
			trajectory = 0.3
		}
	}

	stability := 1 - 5*variance(recent)
	if stability < 0.2 {
		stability = 0.2
	}

	peakRatio := 0.5
	if peak > 0 {
		peakRatio = instant / peak
		if peakRatio > 1.0 {
			peakRatio = 1.0
		}
	}

	return Developmental{Trajectory: trajectory, Stability: stability, PeakRatio: peakRatio}
}

// selfKnowledgeSignal scores the accumulated self-observations: richer,
// multi-dimensional, and recently confirmed scores higher.
func selfKnowledgeSignal(sk SelfKnowledge) float64 {
	switch {
	case sk.Items >= 3 && sk.Stale == 0 && sk.Dimensions >= 2:
		return 1.0
	case sk.Items >= 3 && sk.Stale <= 2:
		return 0.8
	case sk.Items >= 2:
		freshness := 1 - 0.15*float64(sk.Stale)
		if freshness < 0.3 {
			freshness = 0.3
		}
		return 0.6 * freshness
	default:
		return 0.3
	}
}

// wisdomDepthSignal rewards old-but-still-applied knowledge plus recent
// outcome-confirmed applications.
func wisdomDepthSignal(wu WisdomUse) float64 {
	if !wu.AppliedRecently {
		return 0.2
	}
	switch {
	case wu.OldestAppliedAgeDays > 60 && wu.ConfirmedCount > 3:
		return 1.0
	case wu.OldestAppliedAgeDays > 30 || wu.ConfirmedCount > 2:
		return 0.8
	case wu.OldestAppliedAgeDays > 7 || wu.ConfirmedCount > 0:
		return 0.6
	default:
		return 0.4
	}
}

// integrationSignal counts crystallized insights in the trailing week.
func integrationSignal(insights int) float64 {
	switch {
	case insights >= 3:
		return 1.0
	case insights >= 1:
		return 0.7
	default:
		return 0.3
	}
}

// interpret classifies the final value, naming the weakest instantaneous
// signals when there is work to do.
func interpret(value float64, inst Instant) string {
	switch {
	case value >= 0.8:
		return "integrated"
	case value >= 0.6:
		weakest := weakestSignals(inst, 1)
		return fmt.Sprintf("functional, with %s as the growth edge", weakest[0])
	case value >= 0.4:
		weakest := weakestSignals(inst, 2)
		return fmt.Sprintf("fragmented, %s and %s need attention", weakest[0], weakest[1])
	default:
		return "scattered"
	}
}

// weakestSignals names the n lowest instantaneous signals, ties broken by
// the fixed signal order.
func weakestSignals(inst Instant, n int) []string {
	type signal struct {
		name  string
		value float64
	}
	signals := []signal{
		{"clarity", inst.Clarity},
		{"growth", inst.Growth},
		{"engagement", inst.Engagement},
		{"connection", inst.Connection},
		{"energy", inst.Energy},
		{"alignment", inst.Alignment},
	}
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].value < signals[j].value
	})

	names := make([]string, 0, n)
	for i := 0; i < n && i < len(signals); i++ {
		names = append(names, signals[i].name)
	}
	return names
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(values))
}
