package client

import "github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"

// ledger is the append-only, deduplicated chat log for the active
// room. Arrival order is authoritative; entries are never resequenced
// by timestamp. Not safe for concurrent use; the owning Client guards
// it.
type ledger struct {
	messages []models.ChatMessage
	seen     map[string]struct{}
}

func newLedger() *ledger {
	return &ledger{seen: make(map[string]struct{})}
}

// append inserts m preserving arrival order. A message whose id is
// already present is silently discarded; reconnect and replay races
// redeliver frames and duplicates are not an error.
func (l *ledger) append(m models.ChatMessage) bool {
	if _, dup := l.seen[m.ID]; dup {
		return false
	}
	l.seen[m.ID] = struct{}{}
	l.messages = append(l.messages, m)
	return true
}

// replaceAll supersedes the entire ledger with a history replay. Prior
// contents and ordering are discarded, not merged. Duplicate ids
// inside the replay itself keep only their first occurrence.
func (l *ledger) replaceAll(ms []models.ChatMessage) {
	l.messages = l.messages[:0]
	l.seen = make(map[string]struct{}, len(ms))
	for _, m := range ms {
		if _, dup := l.seen[m.ID]; dup {
			continue
		}
		l.seen[m.ID] = struct{}{}
		l.messages = append(l.messages, m)
	}
}

func (l *ledger) clear() {
	l.messages = nil
	l.seen = make(map[string]struct{})
}

func (l *ledger) snapshot() []models.ChatMessage {
	out := make([]models.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *ledger) size() int { return len(l.messages) }
