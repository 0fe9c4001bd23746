package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mkrantz/psyche/internal/store"
)

// maxSurfaced caps how many queue items one session start consumes.
const maxSurfaced = 3

func handleStart(db *store.DB, input *HookInput) {
	payload, _ := json.Marshal(input)
	if _, err := db.LogEvent(store.Event{
		Type:      store.EventSessionStart,
		Payload:   string(payload),
		SessionID: input.Session,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "psyche hook: log session start: %v\n", err)
	}

	items, err := db.GetQueueItems(maxSurfaced)
	if err != nil {
		WriteSessionStartOutput("")
		return
	}

	var lines []string
	for _, item := range items {
		if err := db.MarkSurfaced(item.EntityType, item.EntityID); err != nil {
			fmt.Fprintf(os.Stderr, "psyche hook: mark surfaced %s/%s: %v\n", item.EntityType, item.EntityID, err)
			continue
		}
		db.LogEvent(store.Event{
			Type:       store.EventProactiveSurfaced,
			EntityType: item.EntityType,
			EntityID:   item.EntityID,
			Payload:    surfacedPayload(item),
			SessionID:  input.Session,
		})
		lines = append(lines, fmt.Sprintf("- %s %s: %s", item.EntityType, item.EntityID, item.Reason))
	}

	if len(lines) == 0 {
		WriteSessionStartOutput("")
		return
	}
	WriteSessionStartOutput("Worth revisiting:\n" + strings.Join(lines, "\n"))
}

func surfacedPayload(item store.ProactiveItem) string {
	payload, _ := json.Marshal(map[string]string{"reason": item.Reason})
	return string(payload)
}
