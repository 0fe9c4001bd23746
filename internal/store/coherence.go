package store

import (
	"fmt"
	"time"
)

// CoherenceSnapshot is one persisted coherence measurement with all of its
// component signals. History is append-only and self-referential: the
// developmental signals of the next measurement read these rows.
type CoherenceSnapshot struct {
	ID    int64
	Value float64

	// Instantaneous
	Clarity    float64
	Growth     float64
	Engagement float64
	Connection float64
	Energy     float64
	Alignment  float64

	// Developmental
	Trajectory float64
	Stability  float64
	PeakRatio  float64

	// Meta
	SelfKnowledge float64
	WisdomDepth   float64
	Integration   float64

	Interpretation string
	CreatedAt      int64
}

// AppendCoherence persists a snapshot and returns its id. A zero CreatedAt
// means now.
func (db *DB) AppendCoherence(s CoherenceSnapshot) (int64, error) {
	created := s.CreatedAt
	if created == 0 {
		created = time.Now().UnixMilli()
	}

	result, err := db.Exec(`
		INSERT INTO coherence_history (
			value,
			clarity, growth, engagement, connection, energy, alignment,
			trajectory, stability, peak_ratio,
			self_knowledge, wisdom_depth, integration,
			interpretation, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.Value,
		s.Clarity, s.Growth, s.Engagement, s.Connection, s.Energy, s.Alignment,
		s.Trajectory, s.Stability, s.PeakRatio,
		s.SelfKnowledge, s.WisdomDepth, s.Integration,
		s.Interpretation, created)
	if err != nil {
		return 0, fmt.Errorf("append coherence: %w", err)
	}
	id, _ := result.LastInsertId()
	return id, nil
}

// RecentCoherence returns the most recent snapshots, newest first. A limit
// <= 0 means no limit.
func (db *DB) RecentCoherence(limit int) ([]CoherenceSnapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT id, value,
			clarity, growth, engagement, connection, energy, alignment,
			trajectory, stability, peak_ratio,
			self_knowledge, wisdom_depth, integration,
			interpretation, created_at
		FROM coherence_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent coherence: %w", err)
	}
	defer rows.Close()

	var snapshots []CoherenceSnapshot
	for rows.Next() {
		var s CoherenceSnapshot
		if err := rows.Scan(&s.ID, &s.Value,
			&s.Clarity, &s.Growth, &s.Engagement, &s.Connection, &s.Energy, &s.Alignment,
			&s.Trajectory, &s.Stability, &s.PeakRatio,
			&s.SelfKnowledge, &s.WisdomDepth, &s.Integration,
			&s.Interpretation, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coherence snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// LatestCoherence returns the newest snapshot, or nil if none exist.
func (db *DB) LatestCoherence() (*CoherenceSnapshot, error) {
	snapshots, err := db.RecentCoherence(1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

// PeakCoherence returns the highest value ever recorded, 0 when history is
// empty.
func (db *DB) PeakCoherence() (float64, error) {
	var peak float64
	err := db.QueryRow(`
		SELECT COALESCE(MAX(value), 0) FROM coherence_history
	`).Scan(&peak)
	if err != nil {
		return 0, fmt.Errorf("peak coherence: %w", err)
	}
	return peak, nil
}
