package store

import (
	"testing"
)

func TestAppendAndRecentCoherence(t *testing.T) {
	db := testDB(t)

	id, err := db.AppendCoherence(CoherenceSnapshot{
		Value:          0.72,
		Clarity:        1.0,
		Growth:         0.6,
		Engagement:     1.0,
		Connection:     0.6,
		Energy:         0.8,
		Alignment:      0.5,
		Trajectory:     0.5,
		Stability:      0.5,
		PeakRatio:      0.5,
		SelfKnowledge:  0.6,
		WisdomDepth:    0.4,
		Integration:    0.3,
		Interpretation: "functional coherence, connection is the growth edge",
	})
	if err != nil {
		t.Fatalf("AppendCoherence: %v", err)
	}
	if id == 0 {
		t.Fatal("AppendCoherence returned id 0")
	}

	snapshots, err := db.RecentCoherence(10)
	if err != nil {
		t.Fatalf("RecentCoherence: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snapshots))
	}

	s := snapshots[0]
	if s.Value != 0.72 {
		t.Errorf("Value = %v, want 0.72", s.Value)
	}
	if s.Clarity != 1.0 || s.Energy != 0.8 || s.Integration != 0.3 {
		t.Errorf("signals = %v/%v/%v, want 1.0/0.8/0.3", s.Clarity, s.Energy, s.Integration)
	}
	if s.Interpretation == "" {
		t.Error("Interpretation not stored")
	}
	if s.CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}
}

func TestRecentCoherenceNewestFirst(t *testing.T) {
	db := testDB(t)

	for i, v := range []float64{0.3, 0.5, 0.7} {
		_, err := db.AppendCoherence(CoherenceSnapshot{Value: v, CreatedAt: int64(1000 * (i + 1))})
		if err != nil {
			t.Fatalf("AppendCoherence: %v", err)
		}
	}

	snapshots, err := db.RecentCoherence(2)
	if err != nil {
		t.Fatalf("RecentCoherence: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snapshots))
	}
	if snapshots[0].Value != 0.7 || snapshots[1].Value != 0.5 {
		t.Errorf("order = [%v, %v], want [0.7, 0.5]", snapshots[0].Value, snapshots[1].Value)
	}
}

func TestLatestCoherence(t *testing.T) {
	db := testDB(t)

	latest, err := db.LatestCoherence()
	if err != nil {
		t.Fatalf("LatestCoherence: %v", err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil for empty history", latest)
	}

	for i, v := range []float64{0.4, 0.6} {
		if _, err := db.AppendCoherence(CoherenceSnapshot{Value: v, CreatedAt: int64(1000 * (i + 1))}); err != nil {
			t.Fatalf("AppendCoherence: %v", err)
		}
	}

	latest, err = db.LatestCoherence()
	if err != nil {
		t.Fatalf("LatestCoherence: %v", err)
	}
	if latest == nil || latest.Value != 0.6 {
		t.Errorf("latest = %+v, want value 0.6", latest)
	}
}

func TestPeakCoherence(t *testing.T) {
	db := testDB(t)

	peak, err := db.PeakCoherence()
	if err != nil {
		t.Fatalf("PeakCoherence: %v", err)
	}
	if peak != 0 {
		t.Errorf("empty peak = %v, want 0", peak)
	}

	for i, v := range []float64{0.5, 0.83, 0.6} {
		if _, err := db.AppendCoherence(CoherenceSnapshot{Value: v, CreatedAt: int64(1000 * (i + 1))}); err != nil {
			t.Fatalf("AppendCoherence: %v", err)
		}
	}

	peak, err = db.PeakCoherence()
	if err != nil {
		t.Fatalf("PeakCoherence: %v", err)
	}
	if peak != 0.83 {
		t.Errorf("peak = %v, want 0.83", peak)
	}
}
