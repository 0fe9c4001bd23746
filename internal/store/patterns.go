package store

import (
	"crypto/md5"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Pattern is a recurring observation tracked across projects.
type Pattern struct {
	ID              int64
	Key             string
	Title           string
	Content         string
	Projects        []string
	OccurrenceCount int
	FirstSeen       int64
	LastSeen        int64
	Promoted        bool
	PromotedRef     string
}

// PatternSighting reports the outcome of one RecordPattern call.
type PatternSighting struct {
	ID              int64
	IsNew           bool
	OccurrenceCount int
	Projects        []string
}

// PatternKey derives the dedup key for a title: lowercase it, split on
// whitespace, sort the tokens, hash. Token order and case are irrelevant
// to matching.
func PatternKey(title string) string {
	tokens := strings.Fields(strings.ToLower(title))
	sort.Strings(tokens)
	return fmt.Sprintf("%x", md5.Sum([]byte(strings.Join(tokens, " "))))
}

// RecordPattern registers a sighting. The first sighting of a key inserts
// the row; every later sighting increments occurrence_count and unions the
// project into the set. The count tracks total sightings, the set tracks
// distinct origins, so a repeat sighting from a known project still counts.
// Title and content stay as first seen.
func (db *DB) RecordPattern(title, content, project string) (PatternSighting, error) {
	if title == "" {
		return PatternSighting{}, fmt.Errorf("record pattern: missing title")
	}
	key := PatternKey(title)
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var count int
	var projectsJSON string
	err = tx.QueryRow(`
		SELECT id, occurrence_count, projects FROM patterns WHERE pattern_key = ?
	`, key).Scan(&id, &count, &projectsJSON)

	if err == sql.ErrNoRows {
		projects := []string{}
		if project != "" {
			projects = append(projects, project)
		}
		encoded, err := json.Marshal(projects)
		if err != nil {
			return PatternSighting{}, fmt.Errorf("record pattern: encode projects: %w", err)
		}
		result, err := tx.Exec(`
			INSERT INTO patterns (pattern_key, title, content, projects, occurrence_count, first_seen, last_seen)
			VALUES (?, ?, ?, ?, 1, ?, ?)
		`, key, title, content, string(encoded), now, now)
		if err != nil {
			return PatternSighting{}, fmt.Errorf("record pattern: insert: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return PatternSighting{}, fmt.Errorf("record pattern: commit: %w", err)
		}
		newID, _ := result.LastInsertId()
		return PatternSighting{ID: newID, IsNew: true, OccurrenceCount: 1, Projects: projects}, nil
	}
	if err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: lookup: %w", err)
	}

	var projects []string
	if err := json.Unmarshal([]byte(projectsJSON), &projects); err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: decode projects: %w", err)
	}
	if project != "" && !containsString(projects, project) {
		projects = append(projects, project)
	}
	encoded, err := json.Marshal(projects)
	if err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: encode projects: %w", err)
	}
	count++

	_, err = tx.Exec(`
		UPDATE patterns SET occurrence_count = ?, projects = ?, last_seen = ? WHERE id = ?
	`, count, string(encoded), now, id)
	if err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return PatternSighting{}, fmt.Errorf("record pattern: commit: %w", err)
	}
	return PatternSighting{ID: id, IsNew: false, OccurrenceCount: count, Projects: projects}, nil
}

// GetPattern returns a pattern by id, or nil if not found.
func (db *DB) GetPattern(id int64) (*Pattern, error) {
	row := db.QueryRow(`
		SELECT id, pattern_key, title, content, projects, occurrence_count,
			first_seen, last_seen, promoted, promoted_ref
		FROM patterns WHERE id = ?
	`, id)

	p, err := scanPattern(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return p, nil
}

// FindPromotable returns non-promoted patterns seen in at least minProjects
// distinct projects, most-sighted first. The test is on the distinct project
// count, not occurrence_count.
func (db *DB) FindPromotable(minProjects int) ([]Pattern, error) {
	if minProjects <= 0 {
		minProjects = 2
	}
	rows, err := db.Query(`
		SELECT id, pattern_key, title, content, projects, occurrence_count,
			first_seen, last_seen, promoted, promoted_ref
		FROM patterns WHERE promoted = 0
		ORDER BY occurrence_count DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("find promotable: %w", err)
	}
	defer rows.Close()

	var promotable []Pattern
	for rows.Next() {
		p, err := scanPattern(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("find promotable: %w", err)
		}
		if len(p.Projects) >= minProjects {
			promotable = append(promotable, *p)
		}
	}
	return promotable, rows.Err()
}

// MarkPromoted stamps a pattern as promoted with its external reference.
// Refuses to overwrite an existing promotion.
func (db *DB) MarkPromoted(id int64, ref string) error {
	result, err := db.Exec(`
		UPDATE patterns SET promoted = 1, promoted_ref = ? WHERE id = ? AND promoted = 0
	`, ref, id)
	if err != nil {
		return fmt.Errorf("mark promoted: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("mark promoted: pattern %d missing or already promoted", id)
	}
	return nil
}

// scanPattern reads one pattern row; scan is row.Scan or rows.Scan.
func scanPattern(scan func(...any) error) (*Pattern, error) {
	var p Pattern
	var projectsJSON string
	var promoted int
	var promotedRef sql.NullString
	err := scan(&p.ID, &p.Key, &p.Title, &p.Content, &projectsJSON,
		&p.OccurrenceCount, &p.FirstSeen, &p.LastSeen, &promoted, &promotedRef)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(projectsJSON), &p.Projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	p.Promoted = promoted != 0
	p.PromotedRef = promotedRef.String
	return &p, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
