package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matia-chat/matia-web-ui/internal/models"
)

// Memory implements the conversation store for a single session. The message list is append-only
// and ordered by insertion; messages are never edited, removed, or reordered, and the whole
// conversation lives only as long as the process. All accessors return copies so callers never
// share the underlying slice.
type Memory struct {
	mu       sync.RWMutex
	messages []models.Message
	pending  bool
}

// NewMemory creates the conversation seeded with a single assistant greeting. The greeting starts
// without audio, like every other assistant message.
func NewMemory(greeting string) *Memory {
	return &Memory{
		messages: []models.Message{
			{
				ID:        uuid.NewString(),
				Role:      models.RoleAssistant,
				Text:      greeting,
				Timestamp: time.Now(),
			},
		},
	}
}

// Messages returns the conversation in chronological order.
func (m *Memory) Messages() []models.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	copied := make([]models.Message, len(m.messages))
	copy(copied, m.messages)
	return copied
}

// Message looks up a single message by its ID.
func (m *Memory) Message(id string) (models.Message, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return models.Message{}, false
}

// Append adds a message with the given role and text to the end of the conversation and returns
// it with its generated ID and timestamp filled in.
func (m *Memory) Append(role models.Role, text string) models.Message {
	msg := models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}

	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	return msg
}

// PendingReply reports whether a chat reply is still outstanding.
func (m *Memory) PendingReply() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending
}

// SetPendingReply records whether the session is waiting for a chat reply. The flag is set when
// a user message goes out and cleared when the reply, success or failure, is recorded.
func (m *Memory) SetPendingReply(pending bool) {
	m.mu.Lock()
	m.pending = pending
	m.mu.Unlock()
}

// BeginAudioFetch decides how a play request for the message should proceed. It marks the message
// as loading and tells the caller to fetch, unless a fetch is already in flight or the payload is
// already cached. The returned copy reflects the decision, so a cached result carries the payload
// and a started one carries the loading flag.
func (m *Memory) BeginAudioFetch(id string) (models.Message, models.AudioFetchState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.messages {
		if msg.ID != id {
			continue
		}
		if msg.LoadingAudio {
			return msg, models.AudioFetchInFlight, true
		}
		if msg.HasAudio() {
			return msg, models.AudioFetchCached, true
		}
		m.messages[i].LoadingAudio = true
		return m.messages[i], models.AudioFetchStarted, true
	}
	return models.Message{}, 0, false
}

// FinishAudioFetch stores the synthesized payload on the message and clears the loading flag. The
// payload is permanent for the message: once set it is never replaced, which keeps later play
// requests off the network.
func (m *Memory) FinishAudioFetch(id, audio string) (models.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.messages {
		if msg.ID != id {
			continue
		}
		if !msg.HasAudio() {
			m.messages[i].AudioBase64 = audio
		}
		m.messages[i].LoadingAudio = false
		return m.messages[i], true
	}
	return models.Message{}, false
}

// AbortAudioFetch clears the loading flag without caching anything, so the user can retry by
// clicking again.
func (m *Memory) AbortAudioFetch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.messages {
		if msg.ID == id {
			m.messages[i].LoadingAudio = false
			return
		}
	}
}
