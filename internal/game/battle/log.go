package battle

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/magefree/deckbattle-server-go/internal/game/rules"
)

// LogEntry is one line of the battle log.
type LogEntry struct {
	ID      string    `json:"id"`
	Turn    int       `json:"turn"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// battleLog keeps the most recent lines up to its capacity.
type battleLog struct {
	capacity int
	entries  []LogEntry
}

func newBattleLog(capacity int) *battleLog {
	return &battleLog{capacity: capacity, entries: make([]LogEntry, 0, capacity)}
}

func (l *battleLog) add(entry LogEntry) {
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, entry)
}

func (l *battleLog) lines() []LogEntry {
	return append([]LogEntry(nil), l.entries...)
}

// logf appends a line to the battle log, to the current action's lines and
// to the event stream.
func (s *Session) logf(format string, args ...any) {
	entry := LogEntry{
		ID:      ulid.Make().String(),
		Turn:    s.turn.TurnNumber(),
		Message: fmt.Sprintf(format, args...),
		Time:    time.Now(),
	}
	s.log.add(entry)
	s.actionLog = append(s.actionLog, entry)

	evt := s.newEvent(rules.EventLog, "")
	evt.Description = entry.Message
	s.bus.Publish(evt)
}
