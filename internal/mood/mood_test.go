package mood

import (
	"strings"
	"testing"
)

func TestSynthesizeClarity(t *testing.T) {
	tests := []struct {
		remaining float64
		want      Clarity
	}{
		{1.0, ClarityClear},
		{0.61, ClarityClear},
		{0.6, ClarityConstrained}, // boundary is strict
		{0.31, ClarityConstrained},
		{0.3, ClarityFoggy},
		{0.0, ClarityFoggy},
	}

	for _, tt := range tests {
		got := Synthesize(Inputs{ContextRemaining: tt.remaining}).Clarity
		if got != tt.want {
			t.Errorf("Clarity(%v) = %q, want %q", tt.remaining, got, tt.want)
		}
	}
}

func TestSynthesizeGrowth(t *testing.T) {
	tests := []struct {
		learning, failures, discoveries int
		want                            Growth
	}{
		{3, 2, 1, GrowthGrowing}, // sums to 6
		{5, 0, 0, GrowthSteady},  // sums to 5, not over it
		{1, 0, 0, GrowthSteady},
		{0, 0, 0, GrowthStagnant},
	}

	for _, tt := range tests {
		in := Inputs{Learning: tt.learning, Failures: tt.failures}
		if tt.discoveries > 0 {
			in.Project = &ProjectSignals{RecentDiscoveries: tt.discoveries}
		}
		got := Synthesize(in).Growth
		if got != tt.want {
			t.Errorf("Growth(%d,%d,%d) = %q, want %q",
				tt.learning, tt.failures, tt.discoveries, got, tt.want)
		}
	}
}

func TestSynthesizeEngagement(t *testing.T) {
	tests := []struct {
		applications, projectObs int
		want                     Engagement
	}{
		{4, 0, EngagementEngaged},
		{3, 11, EngagementEngaged}, // project bump pushes it over
		{3, 10, EngagementActive},  // bump needs >10
		{0, 11, EngagementActive},
		{1, 0, EngagementActive},
		{0, 0, EngagementDormant},
	}

	for _, tt := range tests {
		in := Inputs{Applications: tt.applications}
		if tt.projectObs > 0 {
			in.Project = &ProjectSignals{TotalObservations: tt.projectObs}
		}
		got := Synthesize(in).Engagement
		if got != tt.want {
			t.Errorf("Engagement(%d,%d) = %q, want %q",
				tt.applications, tt.projectObs, got, tt.want)
		}
	}
}

func TestSynthesizeConnection(t *testing.T) {
	tests := []struct {
		partnerObs int
		want       Connection
	}{
		{4, ConnectionAttuned},
		{1, ConnectionConnected},
		{0, ConnectionIsolated},
	}

	for _, tt := range tests {
		got := Synthesize(Inputs{PartnerObservations: tt.partnerObs}).Connection
		if got != tt.want {
			t.Errorf("Connection(%d) = %q, want %q", tt.partnerObs, got, tt.want)
		}
	}
}

func TestSynthesizeEnergy(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Energy
	}{
		{
			// project fires outrank the curiosity check
			"project failures dominate",
			Inputs{Learning: 5, Project: &ProjectSignals{RecentFailures: 4}},
			EnergyFocused,
		},
		{
			"learning without application",
			Inputs{Learning: 2, Failures: 1},
			EnergyCurious,
		},
		{
			"heavy application",
			Inputs{Applications: 4},
			EnergyFocused,
		},
		{
			"session churn",
			Inputs{Applications: 1, SessionsToday: 4},
			EnergyRestless,
		},
		{
			"quiet",
			Inputs{},
			EnergyContemplative,
		},
		{
			"light application without churn",
			Inputs{Learning: 3, Failures: 1, Applications: 2},
			EnergyContemplative,
		},
	}

	for _, tt := range tests {
		got := Synthesize(tt.in).Energy
		if got != tt.want {
			t.Errorf("%s: Energy = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	s := Synthesize(Inputs{
		ContextRemaining:    0.8,
		Learning:            5,
		Failures:            2, // growth signal 7 -> growing
		PartnerObservations: 4, // attuned
		SessionsToday:       4, // restless? learning>failures && apps==0 -> curious first
	})
	want := "clear, growing, attuned, curious"
	if s.Summary != want {
		t.Errorf("Summary = %q, want %q", s.Summary, want)
	}

	// Middle states drop out of the summary.
	s = Synthesize(Inputs{
		ContextRemaining:    0.5, // constrained
		Learning:            1,   // growth steady, omitted
		Applications:        1,
		PartnerObservations: 1, // connected, omitted
	})
	want = "constrained, contemplative"
	if s.Summary != want {
		t.Errorf("Summary = %q, want %q", s.Summary, want)
	}

	if strings.Contains(s.Summary, "steady") || strings.Contains(s.Summary, "connected") {
		t.Errorf("Summary %q contains middle-state labels", s.Summary)
	}
}

func TestScores(t *testing.T) {
	tests := []struct {
		got  float64
		want float64
	}{
		{ClarityClear.Score(), 1.0},
		{ClarityConstrained.Score(), 0.6},
		{ClarityFoggy.Score(), 0.3},
		{GrowthGrowing.Score(), 1.0},
		{GrowthSteady.Score(), 0.6},
		{GrowthStagnant.Score(), 0.3},
		{EngagementEngaged.Score(), 1.0},
		{EngagementActive.Score(), 0.6},
		{EngagementDormant.Score(), 0.3},
		{ConnectionAttuned.Score(), 1.0},
		{ConnectionConnected.Score(), 0.6},
		{ConnectionIsolated.Score(), 0.3},
		{EnergyFocused.Score(), 1.0},
		{EnergyCurious.Score(), 0.8},
		{EnergyContemplative.Score(), 0.6},
		{EnergyRestless.Score(), 0.4},
	}

	for i, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("score %d = %v, want %v", i, tt.got, tt.want)
		}
	}
}

func TestSynthesizeKeepsInputs(t *testing.T) {
	in := Inputs{ContextRemaining: 0.5, Learning: 2, SessionsToday: 1}
	s := Synthesize(in)
	if s.Inputs.Learning != 2 || s.Inputs.SessionsToday != 1 {
		t.Errorf("Inputs not carried: %+v", s.Inputs)
	}
}
