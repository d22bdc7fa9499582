package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/matia-chat/matia-web-ui/internal/models"
)

// HandleAudio fetches and plays the speech rendition of a message through HTTP POST requests.
//
// The handler expects a "message_id" form field. The first click on a message triggers a single
// synthesis request; the returned payload is cached on the message, so later clicks replay it
// with no network call. A click while a fetch for the same message is still in flight is a no-op.
// Synthesis failures are recorded as diagnostics only; no conversation message is appended and
// the loading flag is cleared so the user can retry.
func (m Main) HandleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.FormValue("message_id")
	if id == "" {
		m.logger.Error("Message ID is required")
		http.Error(w, "Message ID is required", http.StatusBadRequest)
		return
	}

	msg, state, ok := m.store.BeginAudioFetch(id)
	if !ok {
		m.logger.Error("Message not found", slog.String("messageID", id))
		http.Error(w, "Message not found", http.StatusNotFound)
		return
	}

	switch state {
	case models.AudioFetchInFlight:
		w.WriteHeader(http.StatusNoContent)
	case models.AudioFetchCached:
		m.playback(msg.AudioBase64)
		w.WriteHeader(http.StatusNoContent)
	case models.AudioFetchStarted:
		go m.fetchAudio(msg)

		// The copy we got back carries the loading flag, so the speaker button shows its
		// spinner everywhere.
		m.publishMessage(msg)
		w.WriteHeader(http.StatusAccepted)
	}
}

// fetchAudio performs the synthesis round trip for msg and settles its loading flag.
func (m Main) fetchAudio(msg models.Message) {
	reply, err := m.speech.SynthesizeAudio(context.Background(), msg.Text)
	if err != nil {
		m.logger.Error("Failed to synthesize audio",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
		m.store.AbortAudioFetch(msg.ID)

		if updated, ok := m.store.Message(msg.ID); ok {
			m.publishMessage(updated)
		}
		return
	}

	updated, ok := m.store.FinishAudioFetch(msg.ID, reply.Audio)
	if !ok {
		return
	}

	m.publishMessage(updated)
	m.playback(updated.AudioBase64)
}
