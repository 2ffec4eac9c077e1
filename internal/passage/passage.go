// Package passage fetches reading passages from the scoring service.
package passage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/rbright/recite/internal/version"
)

// ListPath is the passage catalogue relative to the service base URL.
const ListPath = "/api/passages"

// DefaultText is the passage shown before any has been fetched.
const DefaultText = "When we speak, clarity and confidence matter. This is a sample passage for testing."

// ErrNoPassages is returned when the catalogue has no usable entry.
var ErrNoPassages = errors.New("no passages available")

// Passage is one catalogue entry.
type Passage struct {
	ID    string `mapstructure:"id"`
	Level string `mapstructure:"level"`
	Text  string `mapstructure:"text" validate:"required"`
}

// Client reads the passage catalogue.
type Client struct {
	http     *resty.Client
	logger   *slog.Logger
	validate *validator.Validate
}

// NewClient constructs a client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", version.UserAgent()),
		logger:   logger,
		validate: validator.New(),
	}
}

// List fetches every usable passage. Entries without text are dropped.
func (c *Client) List(ctx context.Context) ([]Passage, error) {
	resp, err := c.http.R().SetContext(ctx).Get(ListPath)
	if err != nil {
		return nil, fmt.Errorf("fetch passages: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch passages: HTTP %d", resp.StatusCode())
	}

	var raw []map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode passages: %w", err)
	}

	out := make([]Passage, 0, len(raw))
	for i, entry := range raw {
		p, err := c.decode(entry)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("skipping passage", "index", i, "error", err.Error())
			}
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) decode(entry map[string]any) (Passage, error) {
	var p Passage
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Passage{}, err
	}
	if err := decoder.Decode(entry); err != nil {
		return Passage{}, err
	}
	p.Text = strings.TrimSpace(p.Text)
	if err := c.validate.Struct(p); err != nil {
		return Passage{}, err
	}
	return p, nil
}

// Pick chooses a random passage, preferring entries at level when any match.
func Pick(list []Passage, level string, rng *rand.Rand) (Passage, error) {
	if len(list) == 0 {
		return Passage{}, ErrNoPassages
	}

	candidates := list
	if level = strings.TrimSpace(level); level != "" {
		var matched []Passage
		for _, p := range list {
			if strings.EqualFold(p.Level, level) {
				matched = append(matched, p)
			}
		}
		if len(matched) > 0 {
			candidates = matched
		}
	}

	if rng == nil {
		return candidates[rand.IntN(len(candidates))], nil
	}
	return candidates[rng.IntN(len(candidates))], nil
}
