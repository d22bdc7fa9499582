package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/matia-chat/matia-web-ui/internal/models"
)

// HandleChats processes message submissions from the widget through HTTP POST requests.
//
// The handler expects a "message" form field holding the draft text. A draft that trims down to
// nothing appends no message and issues no request. Otherwise the user's message is appended
// immediately, the pending-reply flag is raised, and the chat request runs asynchronously; the
// assistant's turn reaches the browser through the SSE stream once the backend settles. The
// response body is the rendered partial for the user's message so the submitting client can
// append it without waiting.
func (m Main) HandleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		m.logger.Error("Method not allowed", slog.String("method", r.Method))
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	text := strings.TrimSpace(r.FormValue("message"))
	if text == "" {
		m.logger.Error("Message is required")
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	um := m.store.Append(models.RoleUser, text)
	m.store.SetPendingReply(true)

	// The SSE copy keeps other windows in sync; the submitting client replaces it by ID when
	// the response body arrives.
	m.publishMessage(um)
	m.publishPending(true)
	m.scrollToLatest()

	go m.requestReply(text)

	html, err := m.renderMessage(um)
	if err != nil {
		m.logger.Error("Failed to render user message",
			slog.String("messageID", um.ID),
			slog.String(errLoggerKey, err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if _, err := w.Write([]byte(html)); err != nil {
		m.logger.Error("Failed to write response", slog.String(errLoggerKey, err.Error()))
	}
}

// requestReply performs the chat round trip and records its outcome. A failure is surfaced as a
// fixed, user-visible assistant turn; either way the pending flag is cleared so the user can send
// another message.
func (m Main) requestReply(text string) {
	reply, err := m.chat.SendChatText(context.Background(), text)

	replyText := reply.ResponseText
	if err != nil {
		m.logger.Error("Failed to get chat reply", slog.String(errLoggerKey, err.Error()))
		replyText = m.errorText
	}

	am := m.store.Append(models.RoleAssistant, replyText)
	m.store.SetPendingReply(false)

	m.publishMessage(am)
	m.publishPending(false)
	m.scrollToLatest()
}
