package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/mood"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the full internal state at a glance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	now := time.Now()
	in := eng.GatherMoodInputs(now, 1.0, 0)
	m := mood.Synthesize(in)
	state := eng.Measure(in, eng.GatherSignals(now))

	fmt.Println("## Psyche")
	fmt.Println()
	fmt.Printf("mood:      %s\n", m.Summary)
	fmt.Printf("coherence: %.2f (%s)\n", state.Value, state.Interpretation)
	if peak, err := eng.DB.PeakCoherence(); err == nil && peak > 0 {
		fmt.Printf("peak:      %.2f\n", peak)
	}

	items, err := eng.DB.GetQueueItems(0)
	if err == nil && len(items) > 0 {
		fmt.Println("\n## Worth Revisiting")
		for _, it := range items {
			fmt.Printf("  %s %s: %s\n", it.EntityType, it.EntityID, it.Reason)
		}
	}

	patterns, err := eng.DB.FindPromotable(2)
	if err == nil && len(patterns) > 0 {
		fmt.Println("\n## Recurring Patterns")
		for _, p := range patterns {
			fmt.Printf("  %d. %s (seen in %s)\n", p.ID, p.Title, strings.Join(p.Projects, ", "))
		}
	}

	return nil
}
