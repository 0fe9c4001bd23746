package hooks

// HookInput is the JSON an enclosing agent pipes to psyche hooks on stdin.
// All fields are optional; a missing session just leaves events unlinked.
type HookInput struct {
	Session          int64   `json:"session"`
	Project          string  `json:"project"`
	ContextRemaining float64 `json:"context_remaining"`
}
