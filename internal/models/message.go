package models

import "time"

// Message represents a single turn in the conversation. The text and role are set at creation and
// never change; the audio fields track the on-demand speech synthesis for this specific message.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time

	// AudioBase64 holds the base64-encoded speech rendition of Text. Empty means the audio has
	// not been fetched yet; once set it never changes, so later play requests reuse it without
	// going back to the backend.
	AudioBase64 string
	// LoadingAudio is true only while a synthesis request for this message is in flight. It is
	// never true once AudioBase64 is set.
	LoadingAudio bool
}

// Role represents the author of a message.
type Role string

const (
	// RoleUser marks a message typed by the human.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the assistant, including the seeded greeting
	// and the fixed connection-error turn.
	RoleAssistant Role = "assistant"
)

// IsUser reports whether the message was authored by the human.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// HasAudio reports whether the speech rendition of this message is already cached.
func (m Message) HasAudio() bool {
	return m.AudioBase64 != ""
}

// AudioFetchState reports how a play request should proceed for a message.
type AudioFetchState int

const (
	// AudioFetchStarted means the caller now owns the in-flight flag and must settle it with
	// either FinishAudioFetch or AbortAudioFetch.
	AudioFetchStarted AudioFetchState = iota
	// AudioFetchInFlight means a previous synthesis request for this message has not settled
	// yet, so the play request is a no-op.
	AudioFetchInFlight
	// AudioFetchCached means the audio payload is already stored on the message and can be
	// played back directly.
	AudioFetchCached
)
