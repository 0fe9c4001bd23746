package store

import (
	"database/sql"
	"fmt"
	"time"
)

// DefaultQueuePriority is used when a caller doesn't care.
const DefaultQueuePriority = 0.5

// ProactiveItem is an entity waiting to be surfaced to the partner.
type ProactiveItem struct {
	ID         int64
	EntityType string
	EntityID   string
	Reason     string
	Priority   float64
	CreatedAt  int64
	SurfacedAt *int64
	Dismissed  bool
}

// QueueItem upserts a queue entry keyed by (entity_type, entity_id). A
// second call for the same key overwrites reason, priority, and timestamp
// instead of creating a duplicate, and brings a surfaced or dismissed row
// back to live.
func (db *DB) QueueItem(entityType, entityID, reason string, priority float64) error {
	if entityType == "" || entityID == "" {
		return fmt.Errorf("queue item: missing entity key")
	}

	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO proactive_queue (entity_type, entity_id, reason, priority, created_at, surfaced_at, dismissed)
		VALUES (?, ?, ?, ?, ?, NULL, 0)
		ON CONFLICT(entity_type, entity_id) DO UPDATE SET
			reason = excluded.reason,
			priority = excluded.priority,
			created_at = excluded.created_at,
			surfaced_at = NULL,
			dismissed = 0
	`, entityType, entityID, reason, priority, now)
	if err != nil {
		return fmt.Errorf("queue item: %w", err)
	}
	return nil
}

// GetQueueItems returns live queue entries by priority descending, oldest
// first within a priority. Surfaced and dismissed entries are excluded.
// A limit <= 0 means no limit.
func (db *DB) GetQueueItems(limit int) ([]ProactiveItem, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, entity_type, entity_id, reason, priority, created_at, surfaced_at, dismissed
		FROM proactive_queue
		WHERE dismissed = 0 AND surfaced_at IS NULL
		ORDER BY priority DESC, created_at ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("get queue items: %w", err)
	}
	defer rows.Close()

	var items []ProactiveItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetQueueEntry returns the queue entry for a key regardless of state, or
// nil if the key was never queued.
func (db *DB) GetQueueEntry(entityType, entityID string) (*ProactiveItem, error) {
	row := db.QueryRow(`
		SELECT id, entity_type, entity_id, reason, priority, created_at, surfaced_at, dismissed
		FROM proactive_queue
		WHERE entity_type = ? AND entity_id = ?
	`, entityType, entityID)

	var item ProactiveItem
	var surfacedAt sql.NullInt64
	var dismissed int
	err := row.Scan(&item.ID, &item.EntityType, &item.EntityID, &item.Reason,
		&item.Priority, &item.CreatedAt, &surfacedAt, &dismissed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue entry: %w", err)
	}
	if surfacedAt.Valid {
		item.SurfacedAt = &surfacedAt.Int64
	}
	item.Dismissed = dismissed != 0
	return &item, nil
}

// MarkSurfaced stamps a queue entry as surfaced, removing it from future
// GetQueueItems results. No-op if the key does not exist or was already
// surfaced.
func (db *DB) MarkSurfaced(entityType, entityID string) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		UPDATE proactive_queue SET surfaced_at = ?
		WHERE entity_type = ? AND entity_id = ? AND surfaced_at IS NULL
	`, now, entityType, entityID)
	if err != nil {
		return fmt.Errorf("mark surfaced: %w", err)
	}
	return nil
}

// DismissQueueItem drops a queue entry from future GetQueueItems results
// without surfacing it. No-op if the key does not exist or was already
// dismissed.
func (db *DB) DismissQueueItem(entityType, entityID string) error {
	_, err := db.Exec(`
		UPDATE proactive_queue SET dismissed = 1
		WHERE entity_type = ? AND entity_id = ? AND dismissed = 0
	`, entityType, entityID)
	if err != nil {
		return fmt.Errorf("dismiss queue item: %w", err)
	}
	return nil
}

func scanQueueItem(rows *sql.Rows) (ProactiveItem, error) {
	var item ProactiveItem
	var surfacedAt sql.NullInt64
	var dismissed int
	if err := rows.Scan(&item.ID, &item.EntityType, &item.EntityID, &item.Reason,
		&item.Priority, &item.CreatedAt, &surfacedAt, &dismissed); err != nil {
		return ProactiveItem{}, fmt.Errorf("scan queue item: %w", err)
	}
	if surfacedAt.Valid {
		item.SurfacedAt = &surfacedAt.Int64
	}
	item.Dismissed = dismissed != 0
	return item, nil
}
