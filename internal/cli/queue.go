package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/store"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show and manage the proactive queue",
	Long:  "With no subcommand, lists pending items in surfacing order.",
	RunE:  runQueueList,
}

var (
	queueAddReason   string
	queueAddPriority float64
)

var queueAddCmd = &cobra.Command{
	Use:   "add [entity-type] [entity-id]",
	Short: "Queue an entity for surfacing at the next session start",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueueAdd,
}

var queueDismissCmd = &cobra.Command{
	Use:   "dismiss [entity-type] [entity-id]",
	Short: "Drop a pending entry without surfacing it",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueueDismiss,
}

func runQueueList(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	items, err := eng.DB.GetQueueItems(0)
	if err != nil {
		return fmt.Errorf("get queue: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("Queue is empty.")
		return nil
	}

	for _, it := range items {
		queued := time.UnixMilli(it.CreatedAt).Format("2006-01-02")
		fmt.Printf("  %s %s  %s  (priority %.2f, queued %s)\n",
			it.EntityType, it.EntityID, it.Reason, it.Priority, queued)
	}

	return nil
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	if err := eng.DB.QueueItem(args[0], args[1], queueAddReason, queueAddPriority); err != nil {
		return fmt.Errorf("queue item: %w", err)
	}

	fmt.Printf("queued %s %s\n", args[0], args[1])
	return nil
}

func runQueueDismiss(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	if err := eng.DB.DismissQueueItem(args[0], args[1]); err != nil {
		return fmt.Errorf("dismiss: %w", err)
	}

	fmt.Printf("dismissed %s %s\n", args[0], args[1])
	return nil
}

func init() {
	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueDismissCmd)

	queueAddCmd.Flags().StringVar(&queueAddReason, "reason", "", "Why this should come up again")
	queueAddCmd.Flags().Float64Var(&queueAddPriority, "priority", store.DefaultQueuePriority, "Surfacing priority in [0,1]")
}
