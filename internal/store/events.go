package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// EventType identifies what happened, grouped by subsystem. The constants
// below are the known vocabulary; unknown types are stored as-is, since
// queries filter by exact value.
type EventType string

const (
	EventWisdomGained     EventType = "wisdom.gained"
	EventWisdomApplied    EventType = "wisdom.applied"
	EventWisdomConfirmed  EventType = "wisdom.confirmed"
	EventWisdomChallenged EventType = "wisdom.challenged"
	EventWisdomDecayed    EventType = "wisdom.decayed"

	EventBeliefFormed    EventType = "belief.formed"
	EventBeliefRevised   EventType = "belief.revised"
	EventBeliefAbandoned EventType = "belief.abandoned"

	EventIdentityObserved  EventType = "identity.observed"
	EventIdentityConfirmed EventType = "identity.confirmed"
	EventIdentityStale     EventType = "identity.stale"

	EventIntentionSet       EventType = "intention.set"
	EventIntentionChecked   EventType = "intention.checked"
	EventIntentionFulfilled EventType = "intention.fulfilled"
	EventIntentionAbandoned EventType = "intention.abandoned"

	EventCoherenceMeasured EventType = "coherence.measured"
	EventCoherenceShift    EventType = "coherence.shift"

	EventInsightCrystallized EventType = "insight.crystallized"

	EventSessionStart EventType = "session.start"
	EventSessionEnd   EventType = "session.end"

	EventProactiveSurfaced EventType = "proactive.surfaced"
	EventProactiveQuestion EventType = "proactive.question"
)

// Entity types that appear alongside events. Opaque references; the
// entities themselves live in external collaborator stores.
const (
	EntityWisdom    = "wisdom"
	EntityBelief    = "belief"
	EntityIdentity  = "identity"
	EntityIntention = "intention"
	EntityPattern   = "pattern"
)

// Event is one entry in the append-only log. Nothing here is ever updated
// or deleted.
type Event struct {
	ID         int64
	Type       EventType
	EntityType string
	EntityID   string
	Payload    string
	Coherence  *float64
	SessionID  int64
	CreatedAt  int64
}

// EventQuery filters GetEvents. Zero values match everything; filters
// combine with AND. Since is inclusive, in unix milliseconds.
type EventQuery struct {
	Type       EventType
	EntityType string
	EntityID   string
	Since      int64
	Limit      int
}

// defaultEventLimit bounds GetEvents when the query doesn't say.
const defaultEventLimit = 50

// LogEvent appends an event and returns its id. Only the type is required;
// a zero CreatedAt means now.
func (db *DB) LogEvent(e Event) (int64, error) {
	if e.Type == "" {
		return 0, fmt.Errorf("log event: missing event type")
	}
	created := e.CreatedAt
	if created == 0 {
		created = time.Now().UnixMilli()
	}

	result, err := db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_id, payload, coherence, session_id, created_at)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), ?, NULLIF(?, 0), ?)
	`, string(e.Type), e.EntityType, e.EntityID, e.Payload, e.Coherence, e.SessionID, created)
	if err != nil {
		return 0, fmt.Errorf("log event: %w", err)
	}
	id, _ := result.LastInsertId()
	return id, nil
}

// GetEvents returns events matching the query, newest first. Ties on
// created_at break by insertion order.
func (db *DB) GetEvents(q EventQuery) ([]Event, error) {
	var conds []string
	var args []any
	if q.Type != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, string(q.Type))
	}
	if q.EntityType != "" {
		conds = append(conds, "entity_type = ?")
		args = append(args, q.EntityType)
	}
	if q.EntityID != "" {
		conds = append(conds, "entity_id = ?")
		args = append(args, q.EntityID)
	}
	if q.Since > 0 {
		conds = append(conds, "created_at >= ?")
		args = append(args, q.Since)
	}

	query := `
		SELECT id, event_type, entity_type, entity_id, payload, coherence, session_id, created_at
		FROM events`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"

	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var eventType string
		var entityType, entityID, payload sql.NullString
		var coherence sql.NullFloat64
		var sessionID sql.NullInt64
		if err := rows.Scan(&e.ID, &eventType, &entityType, &entityID, &payload,
			&coherence, &sessionID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = EventType(eventType)
		e.EntityType = entityType.String
		e.EntityID = entityID.String
		e.Payload = payload.String
		if coherence.Valid {
			v := coherence.Float64
			e.Coherence = &v
		}
		e.SessionID = sessionID.Int64
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountEvents returns how many events of the given type were logged at or
// after since (unix milliseconds). A zero since counts everything.
func (db *DB) CountEvents(eventType EventType, since int64) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE event_type = ? AND created_at >= ?
	`, string(eventType), since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// EntityActivity is the log's summary of one entity: when it first and
// last appeared, and what the last event was.
type EntityActivity struct {
	EntityType string
	EntityID   string
	FirstSeen  int64
	LastSeen   int64
	LastType   EventType
}

// GetEntityActivity returns first/last event times per entity for the given
// entity types. Events without an entity reference are skipped.
func (db *DB) GetEntityActivity(entityTypes ...string) ([]EntityActivity, error) {
	if len(entityTypes) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?, ", len(entityTypes)-1) + "?"
	args := make([]any, len(entityTypes))
	for i, et := range entityTypes {
		args[i] = et
	}

	rows, err := db.Query(`
		SELECT e.entity_type, e.entity_id, MIN(e.created_at), MAX(e.created_at),
			(SELECT event_type FROM events
			 WHERE entity_type = e.entity_type AND entity_id = e.entity_id
			 ORDER BY created_at DESC, id DESC LIMIT 1)
		FROM events e
		WHERE e.entity_id IS NOT NULL AND e.entity_type IN (`+placeholders+`)
		GROUP BY e.entity_type, e.entity_id
		ORDER BY e.entity_type, e.entity_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("get entity activity: %w", err)
	}
	defer rows.Close()

	var activity []EntityActivity
	for rows.Next() {
		var a EntityActivity
		var lastType string
		if err := rows.Scan(&a.EntityType, &a.EntityID, &a.FirstSeen, &a.LastSeen, &lastType); err != nil {
			return nil, fmt.Errorf("scan entity activity: %w", err)
		}
		a.LastType = EventType(lastType)
		activity = append(activity, a)
	}
	return activity, rows.Err()
}
