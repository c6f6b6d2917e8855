package practicum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"homework_status_bot/internal/domain/homework"

	"github.com/sirupsen/logrus"
)

const (
	maxResponseBytes  = 1 << 20
	errorSnippetBytes = 512
)

// Client fetches homework statuses from the Practicum API.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string

	token  string
	logger *logrus.Entry
	now    func() time.Time
}

// NewClient creates a client. A zero timeout leaves requests bounded only by their context.
func NewClient(endpoint, token string, timeout time.Duration, logger *logrus.Entry) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Endpoint:   endpoint,
		token:      token,
		logger:     logger,
		now:        time.Now,
	}
}

// FetchStatuses requests homeworks updated since fromDate (Unix seconds; <= 0 means now).
//
// Transport failures and undecodable bodies are Transient; a non-2xx status is Fatal.
func (c *Client) FetchStatuses(ctx context.Context, fromDate int64) homework.FetchOutcome {
	if fromDate <= 0 {
		fromDate = c.now().Unix()
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return homework.Fatal(fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err))
	}
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return homework.Fatal(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("from_date", fromDate).Debug("Requesting homework statuses")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return homework.Transient(fmt.Errorf("request to API failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The snippet is only for the message; a broken error body stays Fatal.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorSnippetBytes))
		return homework.Fatal(fmt.Errorf("API request error: status %d, body: %s", resp.StatusCode, truncate(snippet, 200)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return homework.Transient(fmt.Errorf("read API response: %w", err))
	}

	if !json.Valid(body) {
		return homework.Transient(fmt.Errorf("API response is not valid JSON: %s", truncate(body, 200)))
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"bytes":       len(body),
	}).Debug("Homework statuses received")

	return homework.Success(json.RawMessage(body))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
