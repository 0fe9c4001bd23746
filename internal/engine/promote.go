package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mkrantz/psyche/internal/store"
)

// ErrPatternNotFound is returned when a promotion targets a pattern ID that
// does not exist.
var ErrPatternNotFound = errors.New("pattern not found")

// Promoter turns a recurring pattern into a permanent knowledge item and
// returns a reference to it. Implementations live with the stores that own
// wisdom; LocalPromoter covers standalone use.
type Promoter interface {
	Promote(title, content, domain string) (string, error)
}

// LocalPromoter mints wisdom:// references without an external store.
type LocalPromoter struct {
	entropy *rand.Rand
}

// NewLocalPromoter creates a promoter seeded from the wall clock.
func NewLocalPromoter() *LocalPromoter {
	return &LocalPromoter{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Promote mints a fresh reference. The inputs only matter to promoters
// backed by a real store.
func (p *LocalPromoter) Promote(title, content, domain string) (string, error) {
	return "wisdom://" + ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String(), nil
}

// PromotePattern hands a pattern to the promoter and records the returned
// reference. Promoting an already-promoted pattern returns the stored
// reference unchanged without calling the promoter.
func (e *Engine) PromotePattern(id int64, promoter Promoter) (string, error) {
	p, err := e.DB.GetPattern(id)
	if err != nil {
		return "", fmt.Errorf("promote pattern: %w", err)
	}
	if p == nil {
		return "", fmt.Errorf("promote pattern %d: %w", id, ErrPatternNotFound)
	}
	if p.Promoted {
		return p.PromotedRef, nil
	}

	ref, err := promoter.Promote(p.Title, p.Content, strings.Join(p.Projects, ", "))
	if err != nil {
		return "", fmt.Errorf("promote pattern %d: %w", id, err)
	}

	if err := e.DB.MarkPromoted(id, ref); err != nil {
		// Lost a race with another promoter; the stored ref wins.
		current, gerr := e.DB.GetPattern(id)
		if gerr == nil && current != nil && current.Promoted {
			return current.PromotedRef, nil
		}
		return "", fmt.Errorf("promote pattern: %w", err)
	}

	payload, _ := json.Marshal(map[string]string{"title": p.Title, "ref": ref})
	if _, err := e.DB.LogEvent(store.Event{
		Type:       store.EventInsightCrystallized,
		EntityType: store.EntityPattern,
		EntityID:   strconv.FormatInt(id, 10),
		Payload:    string(payload),
	}); err != nil {
		log.Printf("promote pattern: log event: %v", err)
	}

	return ref, nil
}
