package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/hyperjump/kensaku/internal/errs"
)

// Transcriber converts speech to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio []byte) (string, error)
	Model() string
}

func (e *Extractor) extractAudio(ctx context.Context, content []byte, filename string) (string, map[string]any, error) {
	if e.transcriber == nil {
		return "", nil, errs.Unavailable("transcription", fmt.Errorf("no transcriber configured"))
	}
	text, err := e.transcriber.Transcribe(ctx, filename, content)
	if err != nil {
		return "", nil, err
	}
	return text, map[string]any{"model": e.transcriber.Model()}, nil
}

// HTTPTranscriber posts audio to an OpenAI-compatible /audio/transcriptions endpoint.
type HTTPTranscriber struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewHTTPTranscriber returns a transcriber for endpoint. An empty apiKey makes every
// call fail with errs.ErrDependencyUnavailable.
func NewHTTPTranscriber(endpoint, model, apiKey string, timeout time.Duration) *HTTPTranscriber {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPTranscriber{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// Model returns the transcription model name.
func (t *HTTPTranscriber) Model() string {
	return t.model
}

// Transcribe uploads audio as multipart form data and returns the "text" field of the reply.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	if t.apiKey == "" {
		return "", errs.Unavailable("transcription", fmt.Errorf("API key not configured"))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", errs.Internal("transcription request", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", errs.Internal("transcription request", err)
	}
	if err := mw.WriteField("model", t.model); err != nil {
		return "", errs.Internal("transcription request", err)
	}
	if err := mw.Close(); err != nil {
		return "", errs.Internal("transcription request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &body)
	if err != nil {
		return "", errs.Internal("transcription request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", errs.Unavailable("transcription service", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", errs.Unavailable("transcription service", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.Unavailable("transcription service", fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(data)))
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", errs.Unavailable("transcription service", fmt.Errorf("decode response: %w", err))
	}
	return out.Text, nil
}
