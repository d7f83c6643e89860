// Package proctor ingests integrity signals raised by the candidate's
// browser during an interview: tab switches, window blur, shortcut and
// devtools attempts, and webcam findings such as no_face, multiple_faces,
// and looking_away.
package proctor

import (
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"intervuex-backend-go/internal/models"
	"intervuex-backend-go/internal/store"
)

// Recorder persists violations with a per-(session, type) debounce so a
// flapping detector cannot flood the log. Repeats inside the window are
// acknowledged but not stored.
type Recorder struct {
	DB       *sqlx.DB
	Log      *zap.Logger
	Debounce time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewRecorder(db *sqlx.DB, log *zap.Logger, debounce time.Duration) *Recorder {
	if debounce <= 0 {
		debounce = 12 * time.Second
	}
	return &Recorder{
		DB:       db,
		Log:      log,
		Debounce: debounce,
		seen:     map[string]time.Time{},
		now:      time.Now,
	}
}

// Report records one violation. The bool reports whether the event was
// stored; false means it was suppressed by the debounce window or the
// session is no longer accepting events.
func (r *Recorder) Report(sessionID, userID, violationType, detail string) (*models.ViolationEvent, bool, error) {
	session, err := store.GetSession(r.DB, sessionID)
	if err != nil {
		return nil, false, err
	}
	if session.UserID != userID {
		return nil, false, store.ValidationError{Message: "session belongs to another user"}
	}
	if session.Status != models.SessionInProgress {
		return nil, false, nil
	}

	key := sessionID + "\x00" + violationType
	now := r.now()
	r.mu.Lock()
	if last, ok := r.seen[key]; ok && now.Sub(last) < r.Debounce {
		r.mu.Unlock()
		return nil, false, nil
	}
	r.seen[key] = now
	r.mu.Unlock()

	event, err := store.RecordViolation(r.DB, sessionID, violationType, detail)
	if err != nil {
		return nil, false, err
	}
	r.Log.Info("violation recorded",
		zap.String("session", sessionID),
		zap.String("type", violationType))
	return event, true, nil
}

// Release drops the debounce history of a finished session.
func (r *Recorder) Release(sessionID string) {
	prefix := sessionID + "\x00"
	r.mu.Lock()
	for key := range r.seen {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(r.seen, key)
		}
	}
	r.mu.Unlock()
}
