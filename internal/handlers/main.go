package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	matiawebui "github.com/matia-chat/matia-web-ui"
	"github.com/matia-chat/matia-web-ui/internal/models"
	"github.com/matia-chat/matia-web-ui/internal/services"
	"github.com/tmaxmax/go-sse"
)

const errLoggerKey = "err"

// ChatClient sends the user's text to the remote chat endpoint and returns the assistant's reply.
type ChatClient interface {
	SendChatText(ctx context.Context, userText string) (services.ChatReply, error)
}

// SpeechSynthesizer converts the exact text of a message into a base64-encoded speech payload.
type SpeechSynthesizer interface {
	SynthesizeAudio(ctx context.Context, text string) (services.AudioReply, error)
}

// Store defines the interface for the conversation state. It owns the ordered message list, the
// pending-reply flag, and the per-message audio fetch lifecycle.
type Store interface {
	Messages() []models.Message
	Message(id string) (models.Message, bool)
	Append(role models.Role, text string) models.Message

	PendingReply() bool
	SetPendingReply(pending bool)

	BeginAudioFetch(id string) (models.Message, models.AudioFetchState, bool)
	FinishAudioFetch(id, audio string) (models.Message, bool)
	AbortAudioFetch(id string)
}

// Main handles the core functionality of the chat widget: it mediates every mutation of the
// conversation, drives the two transport clients, and pushes the resulting state to the browser
// through Server-Sent Events.
type Main struct {
	sseSrv    *sse.Server
	templates *template.Template

	chat   ChatClient
	speech SpeechSynthesizer
	store  Store

	// errorText is the fixed assistant turn appended when the chat request fails.
	errorText string

	logger *slog.Logger
}

// SSE event types for real-time updates.
var (
	messagesSSEType = sse.Type("messages")
	scrollSSEType   = sse.Type("scroll")
	audioSSEType    = sse.Type("audio")
	pendingSSEType  = sse.Type("pending")
)

// NewMain creates a new Main instance with the provided transport clients and conversation store.
// It initializes the SSE server with default configurations and parses the required HTML templates
// from the embedded filesystem.
func NewMain(chat ChatClient, speech SpeechSynthesizer, store Store, errorText string, logger *slog.Logger) (Main, error) {
	// We parse templates from three distinct directories to separate layout, pages, and partial views
	tmpl, err := template.ParseFS(
		matiawebui.TemplateFS,
		"templates/layout/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	)
	if err != nil {
		return Main{}, err
	}

	return Main{
		sseSrv:    &sse.Server{},
		templates: tmpl,
		chat:      chat,
		speech:    speech,
		store:     store,
		errorText: errorText,
		logger:    logger.With(slog.String("module", "handlers")),
	}, nil
}

// HandleSSE subscribes the browser to the widget's event stream.
func (m Main) HandleSSE(w http.ResponseWriter, r *http.Request) {
	m.sseSrv.ServeHTTP(w, r)
}

// Shutdown gracefully terminates the SSE server. It broadcasts a close message to all connected
// clients and waits up to 5 seconds for connections to terminate.
func (m Main) Shutdown(ctx context.Context) error {
	e := &sse.Message{Type: sse.Type("closeChat")}
	// We create a close event that complies with SSE spec requiring data
	e.AppendData("bye")

	// We ignore the error here since we're shutting down anyway
	_ = m.sseSrv.Publish(e)

	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	return m.sseSrv.Shutdown(ctx)
}

// message is the view model the partial templates render.
type message struct {
	ID        string
	Role      string
	Content   template.HTML
	Timestamp time.Time

	HasAudio     bool
	LoadingAudio bool
}

func (m Main) viewMessage(msg models.Message) (message, error) {
	content := template.HTML(template.HTMLEscapeString(msg.Text))
	if !msg.IsUser() {
		var err error
		content, err = models.RenderMarkdown(msg.Text)
		if err != nil {
			return message{}, err
		}
	}

	return message{
		ID:           msg.ID,
		Role:         string(msg.Role),
		Content:      content,
		Timestamp:    msg.Timestamp,
		HasAudio:     msg.HasAudio(),
		LoadingAudio: msg.LoadingAudio,
	}, nil
}

func (m Main) renderMessage(msg models.Message) (string, error) {
	vm, err := m.viewMessage(msg)
	if err != nil {
		return "", err
	}

	name := "ai_message"
	if msg.IsUser() {
		name = "user_message"
	}

	var sb strings.Builder
	if err := m.templates.ExecuteTemplate(&sb, name, vm); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// publishMessage pushes the rendered partial for msg to the browser, which inserts or replaces
// it by element ID.
func (m Main) publishMessage(msg models.Message) {
	html, err := m.renderMessage(msg)
	if err != nil {
		m.logger.Error("Failed to render message",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
		return
	}

	e := &sse.Message{Type: messagesSSEType}
	e.AppendData(html)
	if err := m.sseSrv.Publish(e); err != nil {
		m.logger.Error("Failed to publish message",
			slog.String("messageID", msg.ID),
			slog.String(errLoggerKey, err.Error()))
	}
}

// scrollToLatest asks the browser to move the conversation view to its end. The client applies it
// after a short fixed delay and silently skips it when the view is not mounted.
func (m Main) scrollToLatest() {
	e := &sse.Message{Type: scrollSSEType}
	e.AppendData("latest")
	if err := m.sseSrv.Publish(e); err != nil {
		m.logger.Error("Failed to publish scroll event", slog.String(errLoggerKey, err.Error()))
	}
}

// playback hands a base64 audio payload to the browser, which plays it through a data URI. Any
// playback failure stays on the client; it never reaches the stored state.
func (m Main) playback(payload string) {
	e := &sse.Message{Type: audioSSEType}
	e.AppendData(payload)
	if err := m.sseSrv.Publish(e); err != nil {
		m.logger.Error("Failed to publish audio event", slog.String(errLoggerKey, err.Error()))
	}
}

// publishPending mirrors the pending-reply flag to the browser so the input can be gated there.
func (m Main) publishPending(pending bool) {
	e := &sse.Message{Type: pendingSSEType}
	if pending {
		e.AppendData("true")
	} else {
		e.AppendData("false")
	}
	if err := m.sseSrv.Publish(e); err != nil {
		m.logger.Error("Failed to publish pending event", slog.String(errLoggerKey, err.Error()))
	}
}
