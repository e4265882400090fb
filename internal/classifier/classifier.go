// Package classifier wraps the hosted vision model. The contract is
// fail-soft: Classify always returns a label slice, degrading to the
// ["unknown"] sentinel on any failure so capture flows never depend on
// classifier availability.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const maxLabels = 5

// Config holds the vision endpoint settings.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Timeout  time.Duration
}

// Client calls the vision model over HTTP with a bearer credential.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// New creates a classifier client. A zero timeout defaults to 15s.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Inputs string `json:"inputs"`
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends the image url to the vision model and returns up to five
// label strings. Missing credentials, transport errors, non-2xx responses
// and malformed bodies all return the ["unknown"] sentinel; the call is a
// single attempt with no retry.
func (c *Client) Classify(ctx context.Context, imageURL string) []string {
	unknown := []string{"unknown"}

	if c.apiKey == "" || c.endpoint == "" {
		return unknown
	}

	body, err := json.Marshal(classifyRequest{Inputs: imageURL})
	if err != nil {
		return unknown
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return unknown
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("image_url", imageURL).Msg("Classifier unreachable")
		return unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debug().Int("status", resp.StatusCode).Msg("Classifier returned non-success")
		return unknown
	}

	// Response format: array of arrays of {label, score}
	var data [][]prediction
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil || len(data) == 0 {
		return unknown
	}

	top := data[0]
	if len(top) > maxLabels {
		top = top[:maxLabels]
	}
	var out []string
	for _, p := range top {
		if p.Label == "" {
			out = append(out, "unknown")
			continue
		}
		out = append(out, p.Label)
	}
	if len(out) == 0 {
		return unknown
	}
	return out
}
