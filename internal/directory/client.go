// Package directory talks to the spreadsheet-backed guest directory.
//
// The directory exposes a single endpoint: a GET with a nome query parameter
// searches the guest list, and a POST with a JSON array records attendance.
package directory

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

	"github.com/rs/zerolog"

	"wedding-rsvp/internal/metrics"
	"wedding-rsvp/internal/models"
)

const (
	opSearch = "search"
	opSubmit = "submit"

	maxResponseBytes = 1 << 20
)

// TransportError is returned for every failure to reach the directory or to
// make sense of its answer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("directory %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client is the HTTP client of the guest directory.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	log      zerolog.Logger
}

// NewClient creates a directory client. Every call is bounded by timeout.
func NewClient(endpoint string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse directory endpoint: %w", err)
	}
	return &Client{
		endpoint: u,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

// Search returns the guest group matching query. An empty result is a valid
// answer meaning the invitation was not found.
func (c *Client) Search(ctx context.Context, query string) ([]models.GuestGroupEntry, error) {
	defer observe(opSearch, time.Now())

	u := *c.endpoint
	q := u.Query()
	q.Set("nome", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: opSearch, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, &TransportError{Op: opSearch, Err: err}
	}

	var records []models.GuestRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &TransportError{Op: opSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	entries, err := toEntries(records)
	if err != nil {
		return nil, &TransportError{Op: opSearch, Err: err}
	}

	c.log.Debug().Str("query", query).Int("guests", len(entries)).Msg("Directory search answered")
	return entries, nil
}

// Submit records the attendance decisions. The response body is never
// required: any 2xx answer counts as accepted.
func (c *Client) Submit(ctx context.Context, submission models.AttendanceSubmission) error {
	defer observe(opSubmit, time.Now())

	payload, err := json.Marshal(submission)
	if err != nil {
		return &TransportError{Op: opSubmit, Err: fmt.Errorf("encode payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: opSubmit, Err: fmt.Errorf("create request: %w", err)}
	}
	// text/plain keeps the request "simple" for endpoints without CORS preflight support.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	if _, err := c.do(req); err != nil {
		return &TransportError{Op: opSubmit, Err: err}
	}

	c.log.Debug().Int("guests", len(submission)).Msg("Directory submission accepted")
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bad status %d, response: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

func toEntries(records []models.GuestRecord) ([]models.GuestGroupEntry, error) {
	entries := make([]models.GuestGroupEntry, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		name := r.Name
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("record %d has no nomeIndividual", i)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate guest %q in group", name)
		}
		seen[name] = struct{}{}

		status := models.StatusFromSituacao(r.Situacao)
		entries = append(entries, models.GuestGroupEntry{
			Name:        name,
			Group:       r.Group,
			PriorStatus: status,
			Attending:   status == models.RSVPAccepted,
		})
	}
	return entries, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func observe(op string, start time.Time) {
	metrics.DirectoryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
