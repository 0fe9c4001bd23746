package store

import (
	"testing"
	"time"
)

func TestLogEventAndGetEvents(t *testing.T) {
	db := testDB(t)

	coherence := 0.72
	id, err := db.LogEvent(Event{
		Type:       EventWisdomGained,
		EntityType: EntityWisdom,
		EntityID:   "w-1",
		Payload:    `{"summary":"prefer small diffs"}`,
		Coherence:  &coherence,
		SessionID:  7,
	})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if id == 0 {
		t.Fatal("LogEvent returned id 0")
	}

	events, err := db.GetEvents(EventQuery{})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	e := events[0]
	if e.ID != id {
		t.Errorf("ID = %d, want %d", e.ID, id)
	}
	if e.Type != EventWisdomGained {
		t.Errorf("Type = %q, want %q", e.Type, EventWisdomGained)
	}
	if e.EntityType != EntityWisdom || e.EntityID != "w-1" {
		t.Errorf("entity = %q/%q, want wisdom/w-1", e.EntityType, e.EntityID)
	}
	if e.Payload != `{"summary":"prefer small diffs"}` {
		t.Errorf("Payload = %q", e.Payload)
	}
	if e.Coherence == nil || *e.Coherence != 0.72 {
		t.Errorf("Coherence = %v, want 0.72", e.Coherence)
	}
	if e.SessionID != 7 {
		t.Errorf("SessionID = %d, want 7", e.SessionID)
	}
	if e.CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}
}

func TestLogEventMinimal(t *testing.T) {
	db := testDB(t)

	id1, err := db.LogEvent(Event{Type: EventSessionStart})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	id2, err := db.LogEvent(Event{Type: EventSessionEnd})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not monotonic: %d then %d", id1, id2)
	}

	events, err := db.GetEvents(EventQuery{Type: EventSessionStart})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.EntityType != "" || e.EntityID != "" || e.Payload != "" {
		t.Errorf("optional strings not empty: %q/%q/%q", e.EntityType, e.EntityID, e.Payload)
	}
	if e.Coherence != nil {
		t.Errorf("Coherence = %v, want nil", e.Coherence)
	}
	if e.SessionID != 0 {
		t.Errorf("SessionID = %d, want 0", e.SessionID)
	}
}

func TestLogEventRequiresType(t *testing.T) {
	db := testDB(t)

	if _, err := db.LogEvent(Event{EntityID: "w-1"}); err == nil {
		t.Error("expected error for missing type, got nil")
	}
}

func TestLogEventUnknownType(t *testing.T) {
	db := testDB(t)

	if _, err := db.LogEvent(Event{Type: "ritual.completed"}); err != nil {
		t.Fatalf("LogEvent unknown type: %v", err)
	}
	events, err := db.GetEvents(EventQuery{Type: "ritual.completed"})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestGetEventsFilters(t *testing.T) {
	db := testDB(t)

	seed := []Event{
		{Type: EventWisdomGained, EntityType: EntityWisdom, EntityID: "w-1", CreatedAt: 1000},
		{Type: EventWisdomApplied, EntityType: EntityWisdom, EntityID: "w-1", CreatedAt: 2000},
		{Type: EventWisdomGained, EntityType: EntityWisdom, EntityID: "w-2", CreatedAt: 3000},
		{Type: EventBeliefFormed, EntityType: EntityBelief, EntityID: "b-1", CreatedAt: 4000},
	}
	for _, e := range seed {
		if _, err := db.LogEvent(e); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	events, err := db.GetEvents(EventQuery{Type: EventWisdomGained})
	if err != nil {
		t.Fatalf("GetEvents by type: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("by type: got %d events, want 2", len(events))
	}

	events, err = db.GetEvents(EventQuery{EntityType: EntityWisdom})
	if err != nil {
		t.Fatalf("GetEvents by entity type: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("by entity type: got %d events, want 3", len(events))
	}

	events, err = db.GetEvents(EventQuery{Type: EventWisdomGained, EntityID: "w-2"})
	if err != nil {
		t.Fatalf("GetEvents conjunctive: %v", err)
	}
	if len(events) != 1 || events[0].EntityID != "w-2" {
		t.Errorf("conjunctive: got %+v, want single w-2 event", events)
	}
}

func TestGetEventsNewestFirst(t *testing.T) {
	db := testDB(t)

	for _, at := range []int64{1000, 3000, 2000} {
		if _, err := db.LogEvent(Event{Type: EventWisdomGained, CreatedAt: at}); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	events, err := db.GetEvents(EventQuery{})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	want := []int64{3000, 2000, 1000}
	for i, e := range events {
		if e.CreatedAt != want[i] {
			t.Errorf("events[%d].CreatedAt = %d, want %d", i, e.CreatedAt, want[i])
		}
	}
}

func TestGetEventsTiesBreakByInsertion(t *testing.T) {
	db := testDB(t)

	first, err := db.LogEvent(Event{Type: EventWisdomGained, CreatedAt: 5000})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	second, err := db.LogEvent(Event{Type: EventWisdomGained, CreatedAt: 5000})
	if err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	events, err := db.GetEvents(EventQuery{})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].ID != second || events[1].ID != first {
		t.Errorf("tie order = [%d, %d], want [%d, %d]", events[0].ID, events[1].ID, second, first)
	}
}

func TestGetEventsSinceInclusive(t *testing.T) {
	db := testDB(t)

	for _, at := range []int64{1000, 2000, 3000} {
		if _, err := db.LogEvent(Event{Type: EventWisdomGained, CreatedAt: at}); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	events, err := db.GetEvents(EventQuery{Since: 2000})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (since is inclusive)", len(events))
	}
	if events[1].CreatedAt != 2000 {
		t.Errorf("oldest returned = %d, want 2000", events[1].CreatedAt)
	}
}

func TestGetEventsDefaultLimit(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 60; i++ {
		if _, err := db.LogEvent(Event{Type: EventSessionStart, CreatedAt: int64(1000 + i)}); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	events, err := db.GetEvents(EventQuery{})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 50 {
		t.Errorf("got %d events, want default limit 50", len(events))
	}

	events, err = db.GetEvents(EventQuery{Limit: 10})
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 10 {
		t.Errorf("got %d events, want 10", len(events))
	}
}

func TestCountEvents(t *testing.T) {
	db := testDB(t)

	now := time.Now().UnixMilli()
	old := now - 10*24*60*60*1000
	for _, at := range []int64{old, now - 1000, now} {
		if _, err := db.LogEvent(Event{Type: EventWisdomGained, CreatedAt: at}); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}
	if _, err := db.LogEvent(Event{Type: EventWisdomApplied, CreatedAt: now}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	count, err := db.CountEvents(EventWisdomGained, 0)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 3 {
		t.Errorf("all time count = %d, want 3", count)
	}

	count, err = db.CountEvents(EventWisdomGained, now-7*24*60*60*1000)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if count != 2 {
		t.Errorf("7d count = %d, want 2", count)
	}
}

func TestGetEntityActivity(t *testing.T) {
	db := testDB(t)

	seed := []Event{
		{Type: EventWisdomGained, EntityType: EntityWisdom, EntityID: "w-1", CreatedAt: 1000},
		{Type: EventWisdomApplied, EntityType: EntityWisdom, EntityID: "w-1", CreatedAt: 5000},
		{Type: EventBeliefFormed, EntityType: EntityBelief, EntityID: "b-1", CreatedAt: 2000},
		{Type: EventSessionStart, CreatedAt: 3000}, // no entity, skipped
	}
	for _, e := range seed {
		if _, err := db.LogEvent(e); err != nil {
			t.Fatalf("LogEvent: %v", err)
		}
	}

	activity, err := db.GetEntityActivity(EntityWisdom, EntityBelief)
	if err != nil {
		t.Fatalf("GetEntityActivity: %v", err)
	}
	if len(activity) != 2 {
		t.Fatalf("got %d entities, want 2", len(activity))
	}

	byID := map[string]EntityActivity{}
	for _, a := range activity {
		byID[a.EntityID] = a
	}
	w1 := byID["w-1"]
	if w1.FirstSeen != 1000 || w1.LastSeen != 5000 {
		t.Errorf("w-1 first/last = %d/%d, want 1000/5000", w1.FirstSeen, w1.LastSeen)
	}
	if w1.LastType != EventWisdomApplied {
		t.Errorf("w-1 LastType = %q, want %q", w1.LastType, EventWisdomApplied)
	}
	b1 := byID["b-1"]
	if b1.FirstSeen != 2000 || b1.LastSeen != 2000 {
		t.Errorf("b-1 first/last = %d/%d, want 2000/2000", b1.FirstSeen, b1.LastSeen)
	}
	if b1.LastType != EventBeliefFormed {
		t.Errorf("b-1 LastType = %q, want %q", b1.LastType, EventBeliefFormed)
	}

	only, err := db.GetEntityActivity(EntityWisdom)
	if err != nil {
		t.Fatalf("GetEntityActivity: %v", err)
	}
	if len(only) != 1 || only[0].EntityID != "w-1" {
		t.Errorf("filtered activity = %+v, want only w-1", only)
	}
}

// testDB is a helper that creates an in-memory DB for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
