package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/models"
)

// Client talks to a running kensaku server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL (e.g. http://localhost:8000).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ServerError is a non-2xx reply from the server.
type ServerError struct {
	Status  int
	Kind    string
	Details string
}

func (e *ServerError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Details)
	}
	return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Kind, e.Details)
}

// SearchText runs a text query (embedded server-side) and returns the ranked results.
func (c *Client) SearchText(ctx context.Context, req *models.TextSearchRequest) (*models.SearchResponse, error) {
	var out models.SearchResponse
	if err := c.postJSON(ctx, "/search/text", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchKeyword runs a keyword-index query.
func (c *Client) SearchKeyword(ctx context.Context, req *models.KeywordSearchRequest) (*models.SearchResponse, error) {
	var out models.SearchResponse
	if err := c.postJSON(ctx, "/search/keyword", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns the server's store statistics.
func (c *Client) Stats(ctx context.Context) (*models.StoreStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats", nil)
	if err != nil {
		return nil, err
	}
	var out models.StoreStats
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ingest uploads a file for extraction, chunking, and indexing. An empty tenant ingests untagged passages.
func (c *Client) Ingest(ctx context.Context, filename string, content []byte, tenant string) (*models.IngestResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if tenant != "" {
		if err := mw.WriteField("tenant_id", tenant); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out models.IngestResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		serr := &ServerError{Status: resp.StatusCode, Details: strings.TrimSpace(string(b))}
		var body struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		if json.Unmarshal(b, &body) == nil && body.Error != "" {
			serr.Kind, serr.Details = body.Error, body.Details
		}
		return serr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
