package handlers

import (
	"log/slog"
	"net/http"
)

type homePageData struct {
	Messages     []message
	PendingReply bool
}

// HandleHome renders the chat widget page from the current conversation state.
func (m Main) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	messages := m.store.Messages()
	msgs := make([]message, len(messages))
	for i := range messages {
		vm, err := m.viewMessage(messages[i])
		if err != nil {
			m.logger.Error("Failed to render contents",
				slog.String("messageID", messages[i].ID),
				slog.String(errLoggerKey, err.Error()))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		msgs[i] = vm
	}

	data := homePageData{
		Messages:     msgs,
		PendingReply: m.store.PendingReply(),
	}

	if err := m.templates.ExecuteTemplate(w, "home.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
