// Package gemini реализует TextSummarizer поверх REST API generateContent.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"spacesight-bot/internal/domain/entity"
	"spacesight-bot/internal/domain/port"
)

// DefaultAPIURL адрес модели по умолчанию.
const DefaultAPIURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-05-20:generateContent"

var (
	// ErrRequest запрос не выполнен или сервер ответил не 2xx.
	ErrRequest = errors.New("gemini request failed")
	// ErrMalformedResponse ответ пришёл, но в нём нет candidates[0].content.parts[0].text.
	ErrMalformedResponse = port.ErrMalformedSummary
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client клиент generateContent.
type Client struct {
	apiURL string
	apiKey string
	http   *http.Client
}

// NewClient создаёт клиента. Пустой ключ допустим: запрос уйдёт с пустым key.
// timeout 0 оставляет ожидание на усмотрение транспорта.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

// Summarize просит модель кратко описать найденные объекты.
func (c *Client) Summarize(ctx context.Context, detections []entity.Detection) (string, error) {
	payload := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: BuildPrompt(detections)}},
		}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrRequest, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrMalformedResponse
	}

	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrMalformedResponse
	}
	return text, nil
}

func (c *Client) endpoint() string {
	sep := "?"
	if strings.Contains(c.apiURL, "?") {
		sep = "&"
	}
	return c.apiURL + sep + "key=" + url.QueryEscape(c.apiKey)
}

// BuildPrompt собирает запрос к модели со списком "метка (уверенность)".
func BuildPrompt(detections []entity.Detection) string {
	items := make([]string, 0, len(detections))
	for _, d := range detections {
		items = append(items, d.Caption())
	}

	var b strings.Builder
	b.WriteString("You are a helpful AI assistant for the SpaceSight object detection system.\n")
	b.WriteString("Based on the following detected objects and their confidence scores, provide a concise summary of the findings.\n")
	fmt.Fprintf(&b, "Detected objects: %s.\n", strings.Join(items, ", "))
	b.WriteString("Keep the summary to a single paragraph. Focus on the most important detections.")
	return b.String()
}

var _ port.TextSummarizer = (*Client)(nil)
