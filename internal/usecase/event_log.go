package usecase

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/user/rtc-event-log/internal/domain"
)

const defaultMaxRecentEvents = 10000

// EventLog is the in-memory event history backing session snapshots. Runtime
// events live in a per-session drop-oldest ring of bounded capacity;
// configuration events are retained for the life of the session, so a
// snapshot taken long after setup still carries every stream's config.
//
// Log takes ownership of the event it is handed; Snapshot hands out deep
// copies. No event instance is ever shared between the history and a caller.
type EventLog struct {
	maxRecent int
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionHistory
}

type sessionHistory struct {
	configs []domain.Event

	// recent is a circular buffer: head is the index of the oldest entry.
	recent []domain.Event
	head   int
}

// NewEventLog creates an event history keeping up to maxRecent runtime
// events per session. maxRecent <= 0 selects the default capacity.
func NewEventLog(maxRecent int, logger *slog.Logger) *EventLog {
	if maxRecent <= 0 {
		maxRecent = defaultMaxRecentEvents
	}
	return &EventLog{
		maxRecent: maxRecent,
		logger:    logger.With("component", "event_log"),
		sessions:  make(map[string]*sessionHistory),
	}
}

// Log stores the event in the session's history, taking ownership of it.
// It returns the number of runtime events evicted to make room (0 or 1).
func (l *EventLog) Log(sessionID string, e domain.Event) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.sessions[sessionID]
	if !ok {
		h = &sessionHistory{}
		l.sessions[sessionID] = h
	}

	if e.IsConfigEvent() {
		h.configs = append(h.configs, e)
		return 0
	}

	if len(h.recent) < l.maxRecent {
		h.recent = append(h.recent, e)
		return 0
	}

	// Ring is full: overwrite the oldest entry, dropping the only reference
	// to it.
	h.recent[h.head] = e
	h.head = (h.head + 1) % l.maxRecent
	return 1
}

// Snapshot returns independent copies of the session's history: config
// events first, ordered by capture time, followed by the retained runtime
// events from oldest to newest. The caller owns the returned events.
func (l *EventLog) Snapshot(sessionID string) []domain.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.sessions[sessionID]
	if !ok {
		return nil
	}

	out := make([]domain.Event, 0, len(h.configs)+len(h.recent))
	for _, e := range h.configs {
		out = append(out, e.Copy())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().Before(out[j].Timestamp())
	})

	for i := 0; i < len(h.recent); i++ {
		e := h.recent[(h.head+i)%len(h.recent)]
		out = append(out, e.Copy())
	}
	return out
}

// DropSession discards all history for a session once its peer connection
// is gone.
func (l *EventLog) DropSession(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sessions[sessionID]; ok {
		delete(l.sessions, sessionID)
		l.logger.Debug("dropped session history", "session_id", sessionID)
	}
}

// Sessions lists the session IDs currently holding history.
func (l *EventLog) Sessions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.sessions))
	for id := range l.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
