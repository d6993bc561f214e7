// Package gateway talks to the Groq-compatible speech-to-text and chat
// completion APIs. Both calls carry a bounded timeout; the original system
// had none and could hang a request forever.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/clinicapp/clinic-backend/pkg/apperr"
)

const (
	defaultBaseURL = "https://api.groq.com"

	transcriptionsPath  = "/openai/v1/audio/transcriptions"
	chatCompletionsPath = "/openai/v1/chat/completions"

	requestTimeout = 60 * time.Second
)

// Transcription models accepted by the API surface.
const (
	ModelWhisperLargeV3      = "whisper-large-v3"
	ModelWhisperLargeV3Turbo = "whisper-large-v3-turbo"
)

// Client is a thin Groq API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// TranscriptionParams mirrors the upstream transcription form fields.
// Optional fields are sent only when set.
type TranscriptionParams struct {
	FilePath       string
	Model          string
	ResponseFormat string
	Language       string
	Prompt         string
	Temperature    *float64
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file and returns the transcribed text.
func (c *Client) Transcribe(ctx context.Context, p TranscriptionParams) (string, error) {
	f, err := os.Open(p.FilePath)
	if err != nil {
		return "", apperr.NotFoundf("audio file %s", p.FilePath)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(p.FilePath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}

	fields := map[string]string{
		"model":           p.Model,
		"response_format": p.ResponseFormat,
	}
	if p.Language != "" {
		fields["language"] = p.Language
	}
	if p.Prompt != "" {
		fields["prompt"] = p.Prompt
	}
	if p.Temperature != nil {
		fields["temperature"] = strconv.FormatFloat(*p.Temperature, 'f', -1, 64)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+transcriptionsPath, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Gatewayf("transcription request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", apperr.Gatewayf("transcription API returned %s: %s", resp.Status, string(respBody))
	}

	// Plain-text response formats come back as raw text, not JSON.
	if p.ResponseFormat == "text" || p.ResponseFormat == "srt" || p.ResponseFormat == "vtt" {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", apperr.Gatewayf("reading transcription response: %v", err)
		}
		return string(raw), nil
	}

	var result transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.Gatewayf("decoding transcription response: %v", err)
	}
	if result.Text == "" {
		return "", apperr.Gatewayf("transcription API returned no text")
	}
	return result.Text, nil
}

// ChatParams describes one chat completion call.
type ChatParams struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatComplete runs one system+user exchange and returns the first choice's
// content.
func (c *Client) ChatComplete(ctx context.Context, p ChatParams) (string, error) {
	messages := []chatMessage{{Role: "system", Content: p.System}}
	if p.User != "" {
		messages = append(messages, chatMessage{Role: "user", Content: p.User})
	}

	payload, err := json.Marshal(chatRequest{
		Model:       p.Model,
		Messages:    messages,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
		TopP:        p.TopP,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Gatewayf("chat completion request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", apperr.Gatewayf("chat API returned %s: %s", resp.Status, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.Gatewayf("decoding chat response: %v", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", apperr.Gatewayf("chat API returned no content")
	}
	return result.Choices[0].Message.Content, nil
}
