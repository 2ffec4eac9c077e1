// Package scoring uploads finished recordings to the scoring service.
package scoring

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rbright/recite/internal/capture"
	"github.com/rbright/recite/internal/version"
)

// ScorePath is the scoring endpoint relative to the configured base URL.
const ScorePath = "/api/score"

// Request is one submission: the artifact plus the target text active at stop time.
type Request struct {
	Artifact   capture.Artifact
	TargetText string
}

// DurationSeconds returns the recorded duration sent along with the audio.
func (r Request) DurationSeconds() float64 {
	return r.Artifact.DurationSeconds()
}

// Client posts recordings to the scoring service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient constructs a client rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(strings.TrimSpace(baseURL), "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())
	return &Client{http: client, logger: logger, now: time.Now}
}

// Submit uploads req once and resolves the response to a Result or a typed error.
func (c *Client) Submit(ctx context.Context, req Request) (Result, error) {
	filename := fmt.Sprintf("recording-%d.%s", c.now().UnixMilli(), capture.Extension)
	duration := strconv.FormatFloat(req.DurationSeconds(), 'f', -1, 64)

	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("audio", filename, req.Artifact.MIMEType(), bytes.NewReader(req.Artifact.Data())).
		SetMultipartFormData(map[string]string{
			"targetText":      req.TargetText,
			"durationSeconds": duration,
		}).
		Post(ScorePath)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}

	c.logInfo("score response",
		"status", resp.StatusCode(),
		"bytes_sent", req.Artifact.Size(),
		"duration_seconds", duration,
		"latency_ms", time.Since(started).Milliseconds(),
	)

	if !resp.IsSuccess() {
		return Result{}, &ServerError{Status: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
	}
	return ParseResult(resp.Body(), c.logger), nil
}

func (c *Client) logInfo(msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, args...)
}
