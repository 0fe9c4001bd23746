package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mkrantz/psyche/internal/engine"
	"github.com/mkrantz/psyche/internal/store"
	"github.com/mkrantz/psyche/internal/temporal"
)

func handleEnd(db *store.DB, cfg temporal.Config, input *HookInput) {
	payload, _ := json.Marshal(input)
	if _, err := db.LogEvent(store.Event{
		Type:      store.EventSessionEnd,
		Payload:   string(payload),
		SessionID: input.Session,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "psyche hook: log session end: %v\n", err)
	}

	if _, err := engine.New(db, cfg).SweepCandidates(time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "psyche hook: sweep: %v\n", err)
	}
}
