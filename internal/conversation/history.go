package conversation

import (
	"strings"
	"sync"
)

const defaultMaxHistoryTurns = 24

// HistoryStore keeps per-chat dialogue context in process memory. State is
// intentionally volatile: a restart starts every chat from a clean slate.
type HistoryStore struct {
	mu        sync.Mutex
	history   map[string][]ChatMessage
	lastReply map[string]string
	maxTurns  int
}

// NewHistoryStore creates a history store that retains at most maxTurns
// messages per chat. Values <= 0 fall back to the default cap.
func NewHistoryStore(maxTurns int) *HistoryStore {
	if maxTurns <= 0 {
		maxTurns = defaultMaxHistoryTurns
	}
	return &HistoryStore{
		history:   make(map[string][]ChatMessage),
		lastReply: make(map[string]string),
		maxTurns:  maxTurns,
	}
}

// Append adds a message to the chat's history and drops the oldest entries
// once the cap is exceeded.
func (s *HistoryStore) Append(chatID string, msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.history[chatID], msg)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.history[chatID] = turns
}

// Window returns a copy of the chat's most recent n messages, oldest first.
func (s *HistoryStore) Window(chatID string, n int) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.history[chatID]
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]ChatMessage, len(turns))
	copy(out, turns)
	return out
}

// Len reports how many messages the chat currently retains.
func (s *HistoryStore) Len(chatID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history[chatID])
}

// Clear forgets the chat's history and its last sent reply. Clearing an
// unknown chat is a no-op.
func (s *HistoryStore) Clear(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, chatID)
	delete(s.lastReply, chatID)
}

// ShouldSuppress reports whether reply matches the last text sent to the
// chat, ignoring surrounding whitespace. Used to avoid sending the same
// reply twice in a row.
func (s *HistoryStore) ShouldSuppress(chatID, reply string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastReply[chatID]
	if !ok {
		return false
	}
	return strings.TrimSpace(last) == strings.TrimSpace(reply)
}

// RememberReply records the last reply delivered to the chat.
func (s *HistoryStore) RememberReply(chatID, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReply[chatID] = reply
}
