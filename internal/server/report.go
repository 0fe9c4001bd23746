package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mkrantz/psyche/internal/mood"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.buildReport(time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"report": report,
	})
}

// buildReport renders the current internal state as markdown, suitable for
// injection into an agent prompt or reading by a human.
func (s *Server) buildReport(now time.Time) string {
	var b strings.Builder

	b.WriteString("<state>\n## Psyche — Internal State\n")

	in := s.engine.GatherMoodInputs(now, 1.0, 0)
	m := mood.Synthesize(in)
	b.WriteString("\n### Mood\n")
	b.WriteString(m.Summary)
	b.WriteString("\n")

	state := s.engine.Measure(in, s.engine.GatherSignals(now))
	b.WriteString("\n### Coherence\n")
	b.WriteString(fmt.Sprintf("%.2f — %s\n", state.Value, state.Interpretation))
	if peak, err := s.db.PeakCoherence(); err == nil && peak > 0 {
		b.WriteString(fmt.Sprintf("peak %.2f\n", peak))
	}

	// Cap the pending list so the report stays scannable.
	const maxReportItems = 10
	items, err := s.db.GetQueueItems(maxReportItems)
	if err == nil && len(items) > 0 {
		b.WriteString("\n### Worth Revisiting\n")
		for _, it := range items {
			b.WriteString(fmt.Sprintf("- %s %s: %s\n", it.EntityType, it.EntityID, it.Reason))
		}
	}

	patterns, err := s.db.FindPromotable(2)
	if err == nil && len(patterns) > 0 {
		b.WriteString("\n### Recurring Patterns\n")
		for _, p := range patterns {
			b.WriteString(fmt.Sprintf("- %s (seen in %d projects)\n", p.Title, len(p.Projects)))
		}
	}

	b.WriteString("</state>")
	return b.String()
}
