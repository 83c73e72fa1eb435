package triage

import (
	"sync"
	"time"
)

// Tracker maintains a bounded per-session window of recent risk scores and
// derives the session trend. Sessions are independent: a window is only ever
// mutated under its own lock, so concurrent messages for different sessions
// never contend, while duplicate submissions for one session are serialized.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*sessionWindow

	size     int
	ttl      time.Duration
	minDelta float64

	now func() time.Time
}

type sessionWindow struct {
	mu       sync.Mutex
	scores   []float64
	lastSeen time.Time
}

// NewTracker creates a tracker keeping the last size scores per session.
// Windows idle longer than ttl are evicted lazily on access and by Sweep.
func NewTracker(size int, ttl time.Duration, minDelta float64) *Tracker {
	if size <= 0 {
		size = 10
	}
	return &Tracker{
		sessions: make(map[string]*sessionWindow),
		size:     size,
		ttl:      ttl,
		minDelta: minDelta,
		now:      time.Now,
	}
}

// Snapshot returns a copy of the session's recorded scores, oldest first.
// Unknown sessions yield an empty slice.
func (t *Tracker) Snapshot(sessionID string) []float64 {
	win := t.window(sessionID, false)
	if win == nil {
		return nil
	}
	win.mu.Lock()
	defer win.mu.Unlock()
	out := make([]float64, len(win.scores))
	copy(out, win.scores)
	return out
}

// Update appends a score to the session's window, creating it lazily, and
// returns the trend over the window including the new score.
func (t *Tracker) Update(sessionID string, score float64) Trend {
	win := t.window(sessionID, true)
	win.mu.Lock()
	defer win.mu.Unlock()

	win.scores = append(win.scores, score)
	if len(win.scores) > t.size {
		win.scores = win.scores[len(win.scores)-t.size:]
	}
	win.lastSeen = t.now()
	return trendOf(win.scores, t.minDelta)
}

// ActiveSessions returns the number of live windows.
func (t *Tracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Sweep evicts windows idle past the TTL and returns how many were removed.
func (t *Tracker) Sweep() int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	evicted := 0
	for id, win := range t.sessions {
		win.mu.Lock()
		stale := t.ttl > 0 && now.Sub(win.lastSeen) > t.ttl
		win.mu.Unlock()
		if stale {
			delete(t.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs Sweep on the given interval until the returned stop
// function is called.
func (t *Tracker) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.Sweep()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// window fetches a session's window, resetting it if the TTL has lapsed.
func (t *Tracker) window(sessionID string, create bool) *sessionWindow {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	win, ok := t.sessions[sessionID]
	if ok && t.ttl > 0 && now.Sub(win.lastSeen) > t.ttl {
		delete(t.sessions, sessionID)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		win = &sessionWindow{lastSeen: now}
		t.sessions[sessionID] = win
	}
	return win
}

// trendOf classifies the last three scores: non-decreasing with the newest
// exceeding the oldest by at least minDelta is ESCALATING, the symmetric
// condition is DE_ESCALATING, anything else is STABLE.
func trendOf(scores []float64, minDelta float64) Trend {
	if len(scores) < 3 {
		return TrendStable
	}
	a, b, c := scores[len(scores)-3], scores[len(scores)-2], scores[len(scores)-1]
	switch {
	case b >= a && c >= b && c-a >= minDelta:
		return TrendEscalating
	case b <= a && c <= b && a-c >= minDelta:
		return TrendDeEscalating
	default:
		return TrendStable
	}
}
