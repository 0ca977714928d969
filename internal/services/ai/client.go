package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kejahunt/keja-api/internal/config"
)

// Client talks to the generative content service. Responses are free text;
// anything expected to be JSON is parsed defensively and a parse failure
// yields an absent result, never an error surfaced to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient creates a client from config.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends one prompt and returns the first candidate's text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling content service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("content service returned %d: %s", resp.StatusCode, string(data))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("content service returned no candidates")
	}

	return out.Candidates[0].Content.Parts[0].Text, nil
}

// EnhanceDescription rewrites a listing description to be clearer and more
// appealing while keeping the stated facts.
func (c *Client) EnhanceDescription(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite this rental listing description to be clear and appealing. "+
			"Keep every stated fact, add nothing that is not stated. "+
			"Reply with the rewritten description only.\n\nTitle: %s\n\nDescription: %s",
		title, description)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// SuggestTitle proposes a short listing title from a description.
func (c *Client) SuggestTitle(ctx context.Context, description string) (string, error) {
	prompt := fmt.Sprintf(
		"Suggest one short, factual title (under 70 characters) for this rental listing. "+
			"Reply with the title only, no quotes.\n\nDescription: %s",
		description)
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(text), `"`), nil
}

// ScanResult is the moderation verdict for one image.
type ScanResult struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason"`
}

// ScanListingImage asks for a coarse scam-likelihood check on an image.
// Returns (nil, nil) when the service replies with something that is not
// the expected JSON; its output is never trusted blindly.
func (c *Client) ScanListingImage(ctx context.Context, imageURL string) (*ScanResult, error) {
	prompt := fmt.Sprintf(
		"You review rental listing photos for scams. Assess the image at %s. "+
			`Reply with JSON only: {"flagged": bool, "reason": string}. `+
			"Set flagged to true only for watermarked stock photos, screenshots of other "+
			"listings, or images that are clearly not a rental property.",
		imageURL)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var result ScanResult
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &result); err != nil {
		return nil, nil
	}
	return &result, nil
}

// stripCodeFences unwraps a ```json ... ``` block if the model added one.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
