package services_test

import (
	"testing"

	"github.com/matia-chat/matia-web-ui/internal/models"
	"github.com/matia-chat/matia-web-ui/internal/services"
)

func TestNewMemorySeedsGreeting(t *testing.T) {
	store := services.NewMemory("Bienvenido")

	messages := store.Messages()
	if len(messages) != 1 {
		t.Fatalf("len(Messages()) = %d, want 1", len(messages))
	}

	greeting := messages[0]
	if greeting.Role != models.RoleAssistant {
		t.Errorf("greeting role = %s, want assistant", greeting.Role)
	}
	if greeting.Text != "Bienvenido" {
		t.Errorf("greeting text = %q, want %q", greeting.Text, "Bienvenido")
	}
	if greeting.HasAudio() {
		t.Error("greeting should start without audio")
	}
	if greeting.LoadingAudio {
		t.Error("greeting should not start loading audio")
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	store := services.NewMemory("Bienvenido")

	store.Append(models.RoleUser, "first")
	store.Append(models.RoleAssistant, "second")
	store.Append(models.RoleUser, "third")

	messages := store.Messages()
	if len(messages) != 4 {
		t.Fatalf("len(Messages()) = %d, want 4", len(messages))
	}

	wantTexts := []string{"Bienvenido", "first", "second", "third"}
	for i, want := range wantTexts {
		if messages[i].Text != want {
			t.Errorf("messages[%d].Text = %q, want %q", i, messages[i].Text, want)
		}
	}
}

func TestPendingReply(t *testing.T) {
	store := services.NewMemory("Bienvenido")

	if store.PendingReply() {
		t.Error("PendingReply() should start false")
	}

	store.SetPendingReply(true)
	if !store.PendingReply() {
		t.Error("PendingReply() = false after SetPendingReply(true)")
	}

	store.SetPendingReply(false)
	if store.PendingReply() {
		t.Error("PendingReply() = true after SetPendingReply(false)")
	}
}

func TestAudioFetchLifecycle(t *testing.T) {
	store := services.NewMemory("Bienvenido")
	id := store.Messages()[0].ID

	msg, state, ok := store.BeginAudioFetch(id)
	if !ok {
		t.Fatal("BeginAudioFetch() should find the greeting")
	}
	if state != models.AudioFetchStarted {
		t.Fatalf("state = %v, want AudioFetchStarted", state)
	}
	if !msg.LoadingAudio {
		t.Error("started fetch should mark the message as loading")
	}

	// A second request while the first is in flight must not start another fetch.
	_, state, ok = store.BeginAudioFetch(id)
	if !ok || state != models.AudioFetchInFlight {
		t.Fatalf("state = %v, want AudioFetchInFlight", state)
	}

	msg, ok = store.FinishAudioFetch(id, "QUJD")
	if !ok {
		t.Fatal("FinishAudioFetch() should find the greeting")
	}
	if msg.AudioBase64 != "QUJD" {
		t.Errorf("AudioBase64 = %q, want %q", msg.AudioBase64, "QUJD")
	}
	if msg.LoadingAudio {
		t.Error("finished fetch should clear the loading flag")
	}

	msg, state, ok = store.BeginAudioFetch(id)
	if !ok || state != models.AudioFetchCached {
		t.Fatalf("state = %v, want AudioFetchCached", state)
	}
	if msg.AudioBase64 != "QUJD" {
		t.Errorf("cached AudioBase64 = %q, want %q", msg.AudioBase64, "QUJD")
	}
	if msg.LoadingAudio {
		t.Error("a cached message must never be loading")
	}
}

func TestAbortAudioFetch(t *testing.T) {
	store := services.NewMemory("Bienvenido")
	id := store.Messages()[0].ID

	if _, state, _ := store.BeginAudioFetch(id); state != models.AudioFetchStarted {
		t.Fatalf("state = %v, want AudioFetchStarted", state)
	}

	store.AbortAudioFetch(id)

	msg, ok := store.Message(id)
	if !ok {
		t.Fatal("Message() should find the greeting")
	}
	if msg.LoadingAudio {
		t.Error("aborted fetch should clear the loading flag")
	}
	if msg.HasAudio() {
		t.Error("aborted fetch must not cache audio")
	}

	// Aborting leaves the message eligible for a retry.
	if _, state, _ := store.BeginAudioFetch(id); state != models.AudioFetchStarted {
		t.Errorf("state after abort = %v, want AudioFetchStarted", state)
	}
}

func TestBeginAudioFetchUnknownMessage(t *testing.T) {
	store := services.NewMemory("Bienvenido")

	if _, _, ok := store.BeginAudioFetch("missing"); ok {
		t.Error("BeginAudioFetch() should report unknown IDs")
	}
}
