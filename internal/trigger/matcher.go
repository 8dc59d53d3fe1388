package trigger

import (
	"strings"
	"sync"
)

// Matcher accumulates transcript chunks for one utterance and reports when
// the buffer contains a trigger phrase. Matching is a case-insensitive
// substring test over the whole buffer, not word-boundary aware, so phrases
// split across chunks still match.
type Matcher struct {
	mu      sync.Mutex
	phrases []string
	buffer  strings.Builder
}

func NewMatcher(phrases []string) *Matcher {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Matcher{phrases: lowered}
}

// Feed appends chunk and returns true on a match. The buffer is cleared on
// a match so the same utterance cannot fire twice.
func (m *Matcher) Feed(chunk string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.buffer.WriteString(chunk)
	full := strings.ToLower(m.buffer.String())
	for _, phrase := range m.phrases {
		if strings.Contains(full, phrase) {
			m.buffer.Reset()
			return true
		}
	}
	return false
}

// TurnComplete ends the current utterance.
func (m *Matcher) TurnComplete() {
	m.Reset()
}

// Reset discards buffered text.
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffer.Reset()
}

// Buffer returns the text accumulated for the current utterance.
func (m *Matcher) Buffer() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffer.String()
}
