package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkrantz/psyche/internal/store"
)

// --- log command ---

var (
	logEntityType string
	logEntityID   string
	logPayload    string
	logSession    int64
)

var logCmd = &cobra.Command{
	Use:   "log [type]",
	Short: "Append an event to the log",
	Long:  `Append one event, e.g. psyche log wisdom.gained --entity-type wisdom --entity-id w-42 --payload '{"title":"retry budgets"}'.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	id, err := eng.DB.LogEvent(store.Event{
		Type:       store.EventType(args[0]),
		EntityType: logEntityType,
		EntityID:   logEntityID,
		Payload:    logPayload,
		SessionID:  logSession,
	})
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}

	fmt.Printf("logged event %d (%s)\n", id, args[0])
	return nil
}

// --- events command ---

var (
	eventsType       string
	eventsEntityType string
	eventsEntityID   string
	eventsLimit      int
	eventsDays       int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent events, newest first",
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.DB.Close()

	q := store.EventQuery{
		Type:       store.EventType(eventsType),
		EntityType: eventsEntityType,
		EntityID:   eventsEntityID,
		Limit:      eventsLimit,
	}
	if eventsDays > 0 {
		q.Since = time.Now().Add(-time.Duration(eventsDays) * 24 * time.Hour).UnixMilli()
	}

	events, err := eng.DB.GetEvents(q)
	if err != nil {
		return fmt.Errorf("get events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No events recorded.")
		return nil
	}

	for _, e := range events {
		ts := time.UnixMilli(e.CreatedAt).Format("2006-01-02 15:04")
		line := fmt.Sprintf("%s  %-20s", ts, e.Type)
		if e.EntityID != "" {
			line += fmt.Sprintf("  %s/%s", e.EntityType, e.EntityID)
		}
		if e.SessionID != 0 {
			line += fmt.Sprintf("  (session %d)", e.SessionID)
		}
		fmt.Println(line)
		if e.Payload != "" {
			fmt.Printf("    %s\n", e.Payload)
		}
	}

	return nil
}

func init() {
	logCmd.Flags().StringVar(&logEntityType, "entity-type", "", "Entity type the event is about (wisdom, belief, identity, intention, pattern)")
	logCmd.Flags().StringVar(&logEntityID, "entity-id", "", "Entity the event is about")
	logCmd.Flags().StringVar(&logPayload, "payload", "", "JSON payload")
	logCmd.Flags().Int64Var(&logSession, "session", 0, "Session the event belongs to")

	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type")
	eventsCmd.Flags().StringVar(&eventsEntityType, "entity-type", "", "Filter by entity type")
	eventsCmd.Flags().StringVar(&eventsEntityID, "entity-id", "", "Filter by entity")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Maximum number of events")
	eventsCmd.Flags().IntVar(&eventsDays, "days", 0, "Only events from the trailing N days")
}
