// Package hint asks a large language model for the next move.
//
// The advisor is best effort: whenever the service is unconfigured,
// unreachable or answers nonsense, Suggest returns nil and the game goes on.
package hint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/RFlame/Gemi-SaoLei/internal/config"
	"github.com/RFlame/Gemi-SaoLei/internal/mines"
)

type Action string

const (
	Reveal Action = "reveal"
	Flag   Action = "flag"
)

type Suggestion struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Action    Action `json:"action"`
	Reasoning string `json:"reasoning"`
}

var (
	ErrDisabled      = errors.New("hint service is not configured")
	ErrEmptyResponse = errors.New("hint service returned no candidates")
	ErrBadSuggestion = errors.New("hint service suggested an impossible move")
)

// maxResponseSize caps how much of a reply is read.
const maxResponseSize = 1 << 20

const apiKeyHeader = "x-goog-api-key"

type Client struct {
	http   *http.Client
	cfg    config.Hint
	logger *slog.Logger
}

func New(cfg config.Hint, logger *slog.Logger) *Client {
	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) Enabled() bool {
	return c.cfg.Enabled()
}

// Suggest returns a move for board, or nil if none could be obtained.
func (c *Client) Suggest(ctx context.Context, board mines.Board, remaining int) *Suggestion {
	requestId := uuid.NewString()
	logger := c.logger.With(slog.String("hint_request", requestId))

	s, err := c.suggest(ctx, board, remaining)
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			logger.Debug("hint requested while disabled")
		} else {
			logger.Warn("no hint produced", slog.Any("error", err))
		}
		return nil
	}

	logger.Debug("hint produced",
		slog.Int("row", s.Row),
		slog.Int("col", s.Col),
		slog.String("action", string(s.Action)),
	)
	return s
}

func (c *Client) suggest(ctx context.Context, board mines.Board, remaining int) (*Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: Prompt(board, remaining)}},
		}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"%s/v1beta/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.PathEscape(c.cfg.Model),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	// Never in the URL, which transport errors quote.
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to reach hint service: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read hint response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hint service responded %d: %s", res.StatusCode, truncate(payload, 200))
	}

	var gen generateResponse
	if err := json.Unmarshal(payload, &gen); err != nil {
		return nil, fmt.Errorf("malformed hint response: %w", err)
	}
	text := gen.text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	s, err := ParseSuggestion(text)
	if err != nil {
		return nil, err
	}
	if err := s.validate(board); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseSuggestion decodes the model's answer, tolerating a markdown code
// fence around the JSON object.
func ParseSuggestion(text string) (*Suggestion, error) {
	text = strings.TrimSpace(text)
	if start, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}'); start >= 0 && end > start {
		text = text[start : end+1]
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("malformed suggestion: %w", err)
	}
	s.Action = Action(strings.ToLower(string(s.Action)))
	return &s, nil
}

func (s Suggestion) validate(board mines.Board) error {
	if s.Action != Reveal && s.Action != Flag {
		return fmt.Errorf("%w: unknown action %q", ErrBadSuggestion, s.Action)
	}
	if !board.InBounds(s.Row, s.Col) {
		return fmt.Errorf("%w: %d:%d is off the board", ErrBadSuggestion, s.Row, s.Col)
	}
	if !board.At(s.Row, s.Col).State.Covered() {
		return fmt.Errorf("%w: %d:%d is already open", ErrBadSuggestion, s.Row, s.Col)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
