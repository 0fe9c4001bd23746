package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkrantz/psyche/internal/coherence"
	"github.com/mkrantz/psyche/internal/engine"
	"github.com/mkrantz/psyche/internal/mood"
	"github.com/mkrantz/psyche/internal/store"
)

type eventJSON struct {
	ID         int64    `json:"id"`
	Type       string   `json:"type"`
	EntityType string   `json:"entity_type,omitempty"`
	EntityID   string   `json:"entity_id,omitempty"`
	Payload    string   `json:"payload,omitempty"`
	Coherence  *float64 `json:"coherence,omitempty"`
	Session    int64    `json:"session,omitempty"`
	CreatedAt  int64    `json:"created_at"`
}

func toEventJSON(e store.Event) eventJSON {
	return eventJSON{
		ID:         e.ID,
		Type:       string(e.Type),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Payload:    e.Payload,
		Coherence:  e.Coherence,
		Session:    e.SessionID,
		CreatedAt:  e.CreatedAt,
	}
}

func (s *Server) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type       string          `json:"type"`
		EntityType string          `json:"entity_type"`
		EntityID   string          `json:"entity_id"`
		Payload    json.RawMessage `json:"payload"`
		Coherence  *float64        `json:"coherence"`
		Session    int64           `json:"session"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		http.Error(w, `{"error":"type required"}`, http.StatusBadRequest)
		return
	}

	id, err := s.db.LogEvent(store.Event{
		Type:       store.EventType(req.Type),
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Payload:    string(req.Payload),
		Coherence:  req.Coherence,
		SessionID:  req.Session,
	})
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": id})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := store.EventQuery{
		Type:       store.EventType(r.URL.Query().Get("type")),
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   r.URL.Query().Get("entity_id"),
	}
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, `{"error":"since must be unix milliseconds"}`, http.StatusBadRequest)
			return
		}
		q.Since = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = n
		}
	}

	events, err := s.db.GetEvents(q)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = toEventJSON(e)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func (s *Server) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityType string   `json:"entity_type"`
		EntityID   string   `json:"entity_id"`
		Reason     string   `json:"reason"`
		Priority   *float64 `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.EntityType == "" || req.EntityID == "" {
		http.Error(w, `{"error":"entity_type and entity_id required"}`, http.StatusBadRequest)
		return
	}

	priority := store.DefaultQueuePriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	if err := s.db.QueueItem(req.EntityType, req.EntityID, req.Reason, priority); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	items, err := s.db.GetQueueItems(limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type itemJSON struct {
		EntityType string  `json:"entity_type"`
		EntityID   string  `json:"entity_id"`
		Reason     string  `json:"reason"`
		Priority   float64 `json:"priority"`
		CreatedAt  int64   `json:"created_at"`
	}

	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = itemJSON{it.EntityType, it.EntityID, it.Reason, it.Priority, it.CreatedAt}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": len(out),
		"items": out,
	})
}

func (s *Server) handleSurfaceQueueItem(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := decodeQueueKey(w, r)
	if !ok {
		return
	}

	if err := s.db.MarkSurfaced(entityType, entityID); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "surfaced"})
}

func (s *Server) handleDismissQueueItem(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := decodeQueueKey(w, r)
	if !ok {
		return
	}

	if err := s.db.DismissQueueItem(entityType, entityID); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "dismissed"})
}

// decodeQueueKey reads the entity key shared by the surface and dismiss
// bodies, writing the error response itself when the input is bad.
func decodeQueueKey(w http.ResponseWriter, r *http.Request) (entityType, entityID string, ok bool) {
	var req struct {
		EntityType string `json:"entity_type"`
		EntityID   string `json:"entity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return "", "", false
	}
	if req.EntityType == "" || req.EntityID == "" {
		http.Error(w, `{"error":"entity_type and entity_id required"}`, http.StatusBadRequest)
		return "", "", false
	}
	return req.EntityType, req.EntityID, true
}

func (s *Server) handleRecordPattern(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Project string `json:"project"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, `{"error":"title required"}`, http.StatusBadRequest)
		return
	}
	if req.Project == "" {
		http.Error(w, `{"error":"project required"}`, http.StatusBadRequest)
		return
	}

	sighting, err := s.db.RecordPattern(req.Title, req.Content, req.Project)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"id":          sighting.ID,
		"new":         sighting.IsNew,
		"occurrences": sighting.OccurrenceCount,
		"projects":    sighting.Projects,
	})
}

type patternJSON struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content,omitempty"`
	Projects    []string `json:"projects"`
	Occurrences int      `json:"occurrences"`
	FirstSeen   int64    `json:"first_seen"`
	LastSeen    int64    `json:"last_seen"`
}

func (s *Server) handleListPromotable(w http.ResponseWriter, r *http.Request) {
	minProjects := 2
	if v := r.URL.Query().Get("min_projects"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			minProjects = n
		}
	}

	patterns, err := s.db.FindPromotable(minProjects)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	out := make([]patternJSON, len(patterns))
	for i, p := range patterns {
		out[i] = patternJSON{
			ID:          p.ID,
			Title:       p.Title,
			Content:     p.Content,
			Projects:    p.Projects,
			Occurrences: p.OccurrenceCount,
			FirstSeen:   p.FirstSeen,
			LastSeen:    p.LastSeen,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":    len(out),
		"patterns": out,
	})
}

func (s *Server) handlePromotePattern(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "patternID"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid pattern id"}`, http.StatusBadRequest)
		return
	}

	ref, err := s.engine.PromotePattern(id, s.promoter)
	if errors.Is(err, engine.ErrPatternNotFound) {
		http.Error(w, `{"error":"pattern not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":  id,
		"ref": ref,
	})
}

func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	in := s.engine.GatherMoodInputs(time.Now(),
		queryFloat(r, "context_remaining", 1.0),
		queryInt(r, "partner_observations", 0))

	if project := r.URL.Query().Get("project"); project != "" {
		in.Project = &mood.ProjectSignals{
			Project:           project,
			TotalObservations: queryInt(r, "project_observations", 0),
			RecentFailures:    queryInt(r, "project_failures", 0),
			RecentDiscoveries: queryInt(r, "project_discoveries", 0),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mood.Synthesize(in))
}

func (s *Server) handleCoherence(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	in := s.engine.GatherMoodInputs(now,
		queryFloat(r, "context_remaining", 1.0),
		queryInt(r, "partner_observations", 0))
	sig := s.engine.GatherSignals(now)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.engine.Measure(in, sig))
}

func (s *Server) handleMeasureCoherence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Session             int64                  `json:"session"`
		ContextRemaining    *float64               `json:"context_remaining"`
		PartnerObservations int                    `json:"partner_observations"`
		Tensions            int                    `json:"tensions"`
		Aspirations         *coherence.Aspirations `json:"aspirations"`
	}
	// An empty body measures with gathered signals only.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}

	contextRemaining := 1.0
	if req.ContextRemaining != nil {
		contextRemaining = *req.ContextRemaining
	}

	now := time.Now()
	in := s.engine.GatherMoodInputs(now, contextRemaining, req.PartnerObservations)
	sig := s.engine.GatherSignals(now)
	sig.Tensions = req.Tensions
	if req.Aspirations != nil {
		sig.Aspirations = *req.Aspirations
	}

	state, err := s.engine.MeasureAndRecord(in, sig, req.Session)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(state)
}

func (s *Server) handleCoherenceHistory(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	snaps, err := s.db.RecentCoherence(limit)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type snapshotJSON struct {
		ID             int64   `json:"id"`
		Value          float64 `json:"value"`
		Clarity        float64 `json:"clarity"`
		Growth         float64 `json:"growth"`
		Engagement     float64 `json:"engagement"`
		Connection     float64 `json:"connection"`
		Energy         float64 `json:"energy"`
		Alignment      float64 `json:"alignment"`
		Trajectory     float64 `json:"trajectory"`
		Stability      float64 `json:"stability"`
		PeakRatio      float64 `json:"peak_ratio"`
		SelfKnowledge  float64 `json:"self_knowledge"`
		WisdomDepth    float64 `json:"wisdom_depth"`
		Integration    float64 `json:"integration"`
		Interpretation string  `json:"interpretation"`
		CreatedAt      int64   `json:"created_at"`
	}

	out := make([]snapshotJSON, len(snaps))
	for i, snap := range snaps {
		out[i] = snapshotJSON{
			ID:             snap.ID,
			Value:          snap.Value,
			Clarity:        snap.Clarity,
			Growth:         snap.Growth,
			Engagement:     snap.Engagement,
			Connection:     snap.Connection,
			Energy:         snap.Energy,
			Alignment:      snap.Alignment,
			Trajectory:     snap.Trajectory,
			Stability:      snap.Stability,
			PeakRatio:      snap.PeakRatio,
			SelfKnowledge:  snap.SelfKnowledge,
			WisdomDepth:    snap.WisdomDepth,
			Integration:    snap.Integration,
			Interpretation: snap.Interpretation,
			CreatedAt:      snap.CreatedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":   len(out),
		"history": out,
	})
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
