package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Queue entities that have gone quiet",
	Long:  "Scans entity activity and queues anything idle past the threshold for surfacing at the next session start. Runs automatically on session end.",
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	queued, err := eng.SweepCandidates(time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("queued %d candidates\n", queued)
	return nil
}
