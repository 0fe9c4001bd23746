package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/mood"
)

var (
	moodContextRemaining float64
	moodPartnerObs       int
)

var moodCmd = &cobra.Command{
	Use:   "mood",
	Short: "Synthesize the current mood from recent activity",
	RunE:  runMood,
}

func runMood(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	in := eng.GatherMoodInputs(time.Now(), moodContextRemaining, moodPartnerObs)
	m := mood.Synthesize(in)

	fmt.Printf("%s\n\n", m.Summary)
	fmt.Printf("  clarity:    %s\n", m.Clarity)
	fmt.Printf("  growth:     %s\n", m.Growth)
	fmt.Printf("  engagement: %s\n", m.Engagement)
	fmt.Printf("  connection: %s\n", m.Connection)
	fmt.Printf("  energy:     %s\n", m.Energy)
	fmt.Printf("\nlearned %d, failed %d, applied %d in the last 7 days; %d sessions today\n",
		in.Learning, in.Failures, in.Applications, in.SessionsToday)
	return nil
}

func init() {
	moodCmd.Flags().Float64Var(&moodContextRemaining, "context-remaining", 1.0, "Fraction of working context still free, in [0,1]")
	moodCmd.Flags().IntVar(&moodPartnerObs, "partner-observations", 0, "Recent observations about the partner")
}
