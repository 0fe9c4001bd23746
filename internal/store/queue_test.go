package store

import (
	"testing"
)

func TestQueueItemAndGet(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem(EntityWisdom, "w-1", "stale for 20 days", 0.4); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}
	if err := db.QueueItem(EntityBelief, "b-1", "never confirmed", 0.9); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].EntityID != "b-1" || items[1].EntityID != "w-1" {
		t.Errorf("priority order = [%s, %s], want [b-1, w-1]", items[0].EntityID, items[1].EntityID)
	}
	if items[0].Priority != 0.9 {
		t.Errorf("Priority = %v, want 0.9", items[0].Priority)
	}
	if items[0].Reason != "never confirmed" {
		t.Errorf("Reason = %q", items[0].Reason)
	}
}

func TestQueueItemUpsert(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem(EntityWisdom, "w-1", "first reason", 0.3); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}
	if err := db.QueueItem(EntityWisdom, "w-1", "second reason", 0.8); err != nil {
		t.Fatalf("QueueItem upsert: %v", err)
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (no duplicates)", len(items))
	}
	if items[0].Reason != "second reason" || items[0].Priority != 0.8 {
		t.Errorf("item = %q/%v, want overwritten reason and priority", items[0].Reason, items[0].Priority)
	}
}

func TestQueueItemRequiresKey(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem("", "w-1", "r", 0.5); err == nil {
		t.Error("expected error for empty entity type, got nil")
	}
	if err := db.QueueItem(EntityWisdom, "", "r", 0.5); err == nil {
		t.Error("expected error for empty entity id, got nil")
	}
}

func TestQueueTiebreakOldestFirst(t *testing.T) {
	db := testDB(t)

	// Seed directly to control created_at; both share a priority.
	seed := []struct {
		id string
		at int64
	}{
		{"w-newer", 2000},
		{"w-older", 1000},
	}
	for _, s := range seed {
		_, err := db.Exec(`
			INSERT INTO proactive_queue (entity_type, entity_id, reason, priority, created_at)
			VALUES (?, ?, 'stale', 0.5, ?)
		`, EntityWisdom, s.id, s.at)
		if err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].EntityID != "w-older" {
		t.Errorf("tiebreak order first = %s, want w-older", items[0].EntityID)
	}
}

func TestMarkSurfaced(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem(EntityWisdom, "w-1", "stale", 0.5); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}
	if err := db.MarkSurfaced(EntityWisdom, "w-1"); err != nil {
		t.Fatalf("MarkSurfaced: %v", err)
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items after surfacing, want 0", len(items))
	}

	entry, err := db.GetQueueEntry(EntityWisdom, "w-1")
	if err != nil {
		t.Fatalf("GetQueueEntry: %v", err)
	}
	if entry == nil || entry.SurfacedAt == nil {
		t.Fatal("surfaced entry missing or without timestamp")
	}
}

func TestMarkSurfacedIdempotent(t *testing.T) {
	db := testDB(t)

	// Missing key is a no-op.
	if err := db.MarkSurfaced(EntityWisdom, "ghost"); err != nil {
		t.Fatalf("MarkSurfaced missing key: %v", err)
	}

	// Already-surfaced keeps its original timestamp.
	_, err := db.Exec(`
		INSERT INTO proactive_queue (entity_type, entity_id, reason, priority, created_at, surfaced_at)
		VALUES (?, 'w-1', 'stale', 0.5, 1000, 4242)
	`, EntityWisdom)
	if err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	if err := db.MarkSurfaced(EntityWisdom, "w-1"); err != nil {
		t.Fatalf("MarkSurfaced again: %v", err)
	}
	entry, err := db.GetQueueEntry(EntityWisdom, "w-1")
	if err != nil {
		t.Fatalf("GetQueueEntry: %v", err)
	}
	if entry.SurfacedAt == nil || *entry.SurfacedAt != 4242 {
		t.Errorf("SurfacedAt = %v, want original 4242", entry.SurfacedAt)
	}
}

func TestDismissQueueItem(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem(EntityIntention, "i-1", "unchecked", 0.5); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}
	if err := db.DismissQueueItem(EntityIntention, "i-1"); err != nil {
		t.Fatalf("DismissQueueItem: %v", err)
	}
	if err := db.DismissQueueItem(EntityIntention, "i-1"); err != nil {
		t.Fatalf("DismissQueueItem again: %v", err)
	}
	if err := db.DismissQueueItem(EntityIntention, "ghost"); err != nil {
		t.Fatalf("DismissQueueItem missing key: %v", err)
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items after dismissal, want 0", len(items))
	}
}

func TestRequeueResetsState(t *testing.T) {
	db := testDB(t)

	if err := db.QueueItem(EntityWisdom, "w-1", "stale", 0.5); err != nil {
		t.Fatalf("QueueItem: %v", err)
	}
	if err := db.MarkSurfaced(EntityWisdom, "w-1"); err != nil {
		t.Fatalf("MarkSurfaced: %v", err)
	}
	if err := db.QueueItem(EntityWisdom, "w-1", "stale again", 0.6); err != nil {
		t.Fatalf("QueueItem requeue: %v", err)
	}

	items, err := db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items after requeue, want 1", len(items))
	}
	if items[0].Reason != "stale again" {
		t.Errorf("Reason = %q, want requeued reason", items[0].Reason)
	}

	if err := db.DismissQueueItem(EntityWisdom, "w-1"); err != nil {
		t.Fatalf("DismissQueueItem: %v", err)
	}
	if err := db.QueueItem(EntityWisdom, "w-1", "back again", 0.7); err != nil {
		t.Fatalf("QueueItem after dismiss: %v", err)
	}
	items, err = db.GetQueueItems(0)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("got %d items after dismiss+requeue, want 1", len(items))
	}
}

func TestGetQueueEntryMissing(t *testing.T) {
	db := testDB(t)

	entry, err := db.GetQueueEntry(EntityWisdom, "ghost")
	if err != nil {
		t.Fatalf("GetQueueEntry: %v", err)
	}
	if entry != nil {
		t.Errorf("entry = %+v, want nil", entry)
	}
}

func TestGetQueueItemsLimit(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"w-1", "w-2", "w-3"} {
		if err := db.QueueItem(EntityWisdom, id, "stale", 0.5); err != nil {
			t.Fatalf("QueueItem: %v", err)
		}
	}

	items, err := db.GetQueueItems(2)
	if err != nil {
		t.Fatalf("GetQueueItems: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want 2", len(items))
	}
}
