package hooks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mkrantz/psyche/internal/config"
	"github.com/mkrantz/psyche/internal/store"
)

// Handle reads HookInput from the given reader, dispatches on the event
// name, and writes output to stdout. Hooks never fail the enclosing agent:
// every error path degrades to empty output and exit 0.
func Handle(event string, stdin io.Reader) {
	var input HookInput
	if err := json.NewDecoder(stdin).Decode(&input); err != nil {
		// Stdin may be empty. Degrade gracefully.
		if event == "start" {
			WriteSessionStartOutput("")
			return
		}
		ExitError(fmt.Errorf("decode stdin: %w", err))
		return
	}

	cfg := config.Load()
	path := cfg.Database.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			if event == "start" {
				WriteSessionStartOutput("")
				return
			}
			ExitError(err)
			return
		}
	}

	db, err := store.Open(path)
	if err != nil {
		if event == "start" {
			WriteSessionStartOutput("")
			return
		}
		ExitError(err)
		return
	}
	defer db.Close()

	switch event {
	case "start":
		handleStart(db, &input)
	case "end":
		handleEnd(db, cfg.Temporal, &input)
	default:
		ExitError(fmt.Errorf("unknown hook event: %s", event))
	}
}
