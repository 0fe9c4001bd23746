package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/coherence"
)

var (
	coherenceRecord       bool
	coherenceSession      int64
	coherenceContext      float64
	coherenceHistoryLimit int
)

var coherenceCmd = &cobra.Command{
	Use:   "coherence",
	Short: "Measure how coherent the internal state is",
	Long:  "Computes the current coherence value from mood, intention alignment, and measurement history. Use --record to persist the measurement.",
	RunE:  runCoherence,
}

var coherenceHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent coherence measurements",
	RunE:  runCoherenceHistory,
}

func runCoherence(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	now := time.Now()
	in := eng.GatherMoodInputs(now, coherenceContext, 0)
	sig := eng.GatherSignals(now)

	var state coherence.State
	if coherenceRecord {
		state, err = eng.MeasureAndRecord(in, sig, coherenceSession)
		if err != nil {
			return fmt.Errorf("measure: %w", err)
		}
	} else {
		state = eng.Measure(in, sig)
	}

	fmt.Printf("coherence %.2f: %s\n\n", state.Value, state.Interpretation)
	fmt.Printf("  instant        clarity %.2f, growth %.2f, engagement %.2f, connection %.2f, energy %.2f, alignment %.2f\n",
		state.Instant.Clarity, state.Instant.Growth, state.Instant.Engagement,
		state.Instant.Connection, state.Instant.Energy, state.Instant.Alignment)
	fmt.Printf("  developmental  trajectory %.2f, stability %.2f, peak ratio %.2f\n",
		state.Developmental.Trajectory, state.Developmental.Stability, state.Developmental.PeakRatio)
	fmt.Printf("  meta           self-knowledge %.2f, wisdom depth %.2f, integration %.2f\n",
		state.Meta.SelfKnowledge, state.Meta.WisdomDepth, state.Meta.Integration)

	if coherenceRecord {
		fmt.Println("\nrecorded")
	}
	return nil
}

func runCoherenceHistory(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	snaps, err := eng.DB.RecentCoherence(coherenceHistoryLimit)
	if err != nil {
		return fmt.Errorf("recent coherence: %w", err)
	}

	if len(snaps) == 0 {
		fmt.Println("No measurements recorded.")
		return nil
	}

	for _, s := range snaps {
		ts := time.UnixMilli(s.CreatedAt).Format("2006-01-02 15:04")
		fmt.Printf("  %s  %.2f  %s\n", ts, s.Value, s.Interpretation)
	}
	return nil
}

func init() {
	coherenceCmd.AddCommand(coherenceHistoryCmd)

	coherenceCmd.Flags().BoolVar(&coherenceRecord, "record", false, "Persist the measurement and log a coherence.measured event")
	coherenceCmd.Flags().Int64Var(&coherenceSession, "session", 0, "Session to attribute the measurement to")
	coherenceCmd.Flags().Float64Var(&coherenceContext, "context-remaining", 1.0, "Fraction of working context still free, in [0,1]")

	coherenceHistoryCmd.Flags().IntVarP(&coherenceHistoryLimit, "limit", "n", 20, "Maximum number of measurements")
}
