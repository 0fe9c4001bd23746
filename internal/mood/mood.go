package mood

import (
	"strings"
)

// Clarity tracks how much working context remains.
type Clarity string

const (
	ClarityClear       Clarity = "clear"
	ClarityConstrained Clarity = "constrained"
	ClarityFoggy       Clarity = "foggy"
)

// Growth tracks whether new things are being learned.
type Growth string

const (
	GrowthGrowing  Growth = "growing"
	GrowthSteady   Growth = "steady"
	GrowthStagnant Growth = "stagnant"
)

// Engagement tracks whether knowledge is being put to use.
type Engagement string

const (
	EngagementEngaged Engagement = "engaged"
	EngagementActive  Engagement = "active"
	EngagementDormant Engagement = "dormant"
)

// Connection tracks attention to the partner.
type Connection string

const (
	ConnectionAttuned   Connection = "attuned"
	ConnectionConnected Connection = "connected"
	ConnectionIsolated  Connection = "isolated"
)

// Energy tracks the quality of current activity.
type Energy string

const (
	EnergyFocused       Energy = "focused"
	EnergyCurious       Energy = "curious"
	EnergyRestless      Energy = "restless"
	EnergyContemplative Energy = "contemplative"
)

// ProjectSignals are optional per-project counters supplied by an external
// collaborator.
type ProjectSignals struct {
	Project           string `json:"project"`
	TotalObservations int    `json:"total_observations"`
	RecentFailures    int    `json:"recent_failures"`
	RecentDiscoveries int    `json:"recent_discoveries"`
}

// Inputs are the raw counters a mood is synthesized from. Activity counts
// cover the trailing 7 days; SessionsToday covers the current day.
type Inputs struct {
	ContextRemaining    float64         `json:"context_remaining"`
	Learning            int             `json:"learning"`
	Failures            int             `json:"failures"`
	Applications        int             `json:"applications"`
	PartnerObservations int             `json:"partner_observations"`
	SessionsToday       int             `json:"sessions_today"`
	Project             *ProjectSignals `json:"project,omitempty"`
}

// State is a synthesized mood: five independent categorical dimensions,
// the counters that produced them, and a short summary. Recomputed fresh
// on every call, never persisted on its own.
type State struct {
	Clarity    Clarity    `json:"clarity"`
	Growth     Growth     `json:"growth"`
	Engagement Engagement `json:"engagement"`
	Connection Connection `json:"connection"`
	Energy     Energy     `json:"energy"`
	Inputs     Inputs     `json:"inputs"`
	Summary    string     `json:"summary"`
}

// Synthesize maps activity counters onto the five mood dimensions.
func Synthesize(in Inputs) State {
	var projObservations, projFailures, projDiscoveries int
	if in.Project != nil {
		projObservations = in.Project.TotalObservations
		projFailures = in.Project.RecentFailures
		projDiscoveries = in.Project.RecentDiscoveries
	}

	var clarity Clarity
	switch {
	case in.ContextRemaining > 0.6:
		clarity = ClarityClear
	case in.ContextRemaining > 0.3:
		clarity = ClarityConstrained
	default:
		clarity = ClarityFoggy
	}

	var growth Growth
	switch signal := in.Learning + in.Failures + projDiscoveries; {
	case signal > 5:
		growth = GrowthGrowing
	case signal > 0:
		growth = GrowthSteady
	default:
		growth = GrowthStagnant
	}

	useSignal := in.Applications
	if projObservations > 10 {
		useSignal++
	}
	var engagement Engagement
	switch {
	case useSignal > 3:
		engagement = EngagementEngaged
	case useSignal > 0:
		engagement = EngagementActive
	default:
		engagement = EngagementDormant
	}

	var connection Connection
	switch {
	case in.PartnerObservations > 3:
		connection = ConnectionAttuned
	case in.PartnerObservations > 0:
		connection = ConnectionConnected
	default:
		connection = ConnectionIsolated
	}

	// Priority-ordered: project fires dominate, then undirected learning,
	// then heavy application, then session churn.
	var energy Energy
	switch {
	case projFailures > 3:
		energy = EnergyFocused
	case in.Learning > in.Failures && in.Applications == 0:
		energy = EnergyCurious
	case in.Applications > 3:
		energy = EnergyFocused
	case in.SessionsToday > 3:
		energy = EnergyRestless
	default:
		energy = EnergyContemplative
	}

	s := State{
		Clarity:    clarity,
		Growth:     growth,
		Engagement: engagement,
		Connection: connection,
		Energy:     energy,
		Inputs:     in,
	}
	s.Summary = s.summarize()
	return s
}

// summarize joins the qualifying labels. Steady growth and the middle
// "connected" state don't make the summary.
func (s State) summarize() string {
	parts := []string{string(s.Clarity)}
	if s.Growth == GrowthGrowing || s.Growth == GrowthStagnant {
		parts = append(parts, string(s.Growth))
	}
	if s.Connection == ConnectionAttuned || s.Connection == ConnectionIsolated {
		parts = append(parts, string(s.Connection))
	}
	parts = append(parts, string(s.Energy))
	return strings.Join(parts, ", ")
}

// Score maps clarity onto [0,1] for the coherence aggregator.
func (c Clarity) Score() float64 {
	switch c {
	case ClarityClear:
		return 1.0
	case ClarityConstrained:
		return 0.6
	default:
		return 0.3
	}
}

// Score maps growth onto [0,1].
func (g Growth) Score() float64 {
	switch g {
	case GrowthGrowing:
		return 1.0
	case GrowthSteady:
		return 0.6
	default:
		return 0.3
	}
}

// Score maps engagement onto [0,1].
func (e Engagement) Score() float64 {
	switch e {
	case EngagementEngaged:
		return 1.0
	case EngagementActive:
		return 0.6
	default:
		return 0.3
	}
}

// Score maps connection onto [0,1].
func (c Connection) Score() float64 {
	switch c {
	case ConnectionAttuned:
		return 1.0
	case ConnectionConnected:
		return 0.6
	default:
		return 0.3
	}
}

// Score maps energy onto [0,1]. All four states carry some charge;
// restlessness carries the least.
func (e Energy) Score() float64 {
	switch e {
	case EnergyFocused:
		return 1.0
	case EnergyCurious:
		return 0.8
	case EnergyContemplative:
		return 0.6
	default:
		return 0.4
	}
}
