package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

func writeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio_test.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeSendsMultipartForm(t *testing.T) {
	var gotAuth, gotModel, gotFormat, gotLanguage, gotTemp string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != transcriptionsPath {
			t.Errorf("path = %s, want %s", r.URL.Path, transcriptionsPath)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")
		gotLanguage = r.FormValue("language")
		gotTemp = r.FormValue("temperature")

		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		buf := make([]byte, 32)
		n, _ := f.Read(buf)
		gotFile = buf[:n]

		json.NewEncoder(w).Encode(map[string]string{"text": "hello from whisper"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	temp := 0.4
	text, err := c.Transcribe(context.Background(), TranscriptionParams{
		FilePath:       writeAudioFile(t),
		Model:          ModelWhisperLargeV3Turbo,
		ResponseFormat: "json",
		Language:       "id",
		Temperature:    &temp,
	})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "hello from whisper" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotModel != ModelWhisperLargeV3Turbo || gotFormat != "json" || gotLanguage != "id" || gotTemp != "0.4" {
		t.Errorf("form fields = %q/%q/%q/%q", gotModel, gotFormat, gotLanguage, gotTemp)
	}
	if string(gotFile) != "fake audio" {
		t.Errorf("uploaded file = %q", gotFile)
	}
}

func TestTranscribePlainTextFormats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("1\n00:00:00,000 --> 00:00:02,000\nhello\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	text, err := c.Transcribe(context.Background(), TranscriptionParams{
		FilePath:       writeAudioFile(t),
		Model:          ModelWhisperLargeV3,
		ResponseFormat: "srt",
	})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text == "" || text[0] != '1' {
		t.Errorf("raw srt body not returned: %q", text)
	}
}

func TestTranscribeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.Transcribe(context.Background(), TranscriptionParams{
		FilePath:       writeAudioFile(t),
		Model:          ModelWhisperLargeV3Turbo,
		ResponseFormat: "json",
	})
	if !errors.Is(err, apperr.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	c := NewClient("http://unused", "key")
	_, err := c.Transcribe(context.Background(), TranscriptionParams{FilePath: "/nonexistent/audio.mp3"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestChatComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatCompletionsPath {
			t.Errorf("path = %s, want %s", r.URL.Path, chatCompletionsPath)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "structured summary"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	out, err := c.ChatComplete(context.Background(), ChatParams{
		Model:       "llama-3.1-8b-instant",
		System:      "you are a medical assistant",
		User:        "transcript here",
		Temperature: 0.3,
		MaxTokens:   4000,
		TopP:        0.9,
	})
	if err != nil {
		t.Fatalf("chat complete: %v", err)
	}
	if out != "structured summary" {
		t.Errorf("content = %q", out)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
	if got.Model != "llama-3.1-8b-instant" || got.MaxTokens != 4000 || got.TopP != 0.9 {
		t.Errorf("request = %+v", got)
	}
}

func TestChatCompleteSystemOnly(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	if _, err := c.ChatComplete(context.Background(), ChatParams{Model: "m", System: "prompt"}); err != nil {
		t.Fatalf("chat complete: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "system" {
		t.Errorf("messages = %+v, want single system message", got.Messages)
	}
}

func TestChatCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.ChatComplete(context.Background(), ChatParams{Model: "m", System: "prompt"})
	if !errors.Is(err, apperr.ErrGateway) {
		t.Fatalf("err = %v, want ErrGateway", err)
	}
}
