package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ChatReply is the chat endpoint's response. The backend returns the reply text immediately and
// leaves the audio field null; speech is synthesized separately through SynthesizeAudio when the
// user asks for it.
type ChatReply struct {
	ResponseText string `json:"respuesta"`
	Audio        string `json:"audio"`
}

// AudioReply is the text-to-speech endpoint's response, carrying a base64-encoded MP3 payload.
type AudioReply struct {
	Audio string `json:"audio"`
}

// API provides an interface to the remote chat backend. It translates the widget's two intents,
// sending chat text and synthesizing speech, into single request/response round trips against a
// configured base address. It keeps no state of its own and never retries.
type API struct {
	baseURL string

	client *http.Client

	logger *slog.Logger
}

// NewAPI creates a new API instance pointing at the given base address. The underlying HTTP
// client carries no timeout; the widget waits for the backend to settle.
func NewAPI(baseURL string, logger *slog.Logger) API {
	return API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger.With(slog.String("module", "api")),
	}
}

type apiRequest struct {
	Text string `json:"texto"`
}

// SendChatText posts the user's text to the chat endpoint and returns the assistant's reply.
// The caller is responsible for trimming and validating the text.
func (a API) SendChatText(ctx context.Context, userText string) (ChatReply, error) {
	var reply ChatReply
	if err := a.post(ctx, "/chat", userText, &reply); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// SynthesizeAudio posts the exact text of a message to the text-to-speech endpoint and returns
// the synthesized speech payload.
func (a API) SynthesizeAudio(ctx context.Context, text string) (AudioReply, error) {
	var reply AudioReply
	if err := a.post(ctx, "/text-to-speech", text, &reply); err != nil {
		return AudioReply{}, err
	}
	return reply, nil
}

func (a API) post(ctx context.Context, path, text string, out any) error {
	jsonBody, err := json.Marshal(apiRequest{Text: text})
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	a.logger.Debug("Request Body",
		slog.String("path", path),
		slog.String("body", string(jsonBody)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	return nil
}
