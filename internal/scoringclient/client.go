// Package scoringclient talks to the scoring service over HTTP. Ball
// submissions are retried with exponential backoff; the service answers a
// resubmitted sequence with the original result, so retries never double-score.
package scoringclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	domainmatches "github.com/preston-bernstein/cricket-scoring-service/internal/domain/matches"
	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
)

// Config controls how the client reaches the service.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *slog.Logger
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client is a typed HTTP client for the scoring API.
type Client struct {
	baseURL        string
	httpClient     httpDoer
	logger         *slog.Logger
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewClient constructs a client with defaults for unset fields.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:        normalizeBaseURL(cfg.BaseURL),
		httpClient:     resolveHTTPClient(cfg.HTTPClient),
		logger:         cfg.Logger,
		maxAttempts:    orInt(cfg.MaxAttempts, defaultMaxAttempts),
		initialBackoff: orDuration(cfg.InitialBackoff, defaultInitialBackoff),
		maxBackoff:     orDuration(cfg.MaxBackoff, defaultMaxBackoff),
	}
}

// CreateMatch registers a match.
func (c *Client) CreateMatch(ctx context.Context, setup domainmatches.Setup) (domainmatches.MatchState, error) {
	var state domainmatches.MatchState
	err := c.do(ctx, http.MethodPost, "/api/matches", setup, &state)
	return state, err
}

// StartInnings opens an innings.
func (c *Client) StartInnings(ctx context.Context, matchID string, start domainmatches.InningsStart) (domainmatches.MatchState, error) {
	var state domainmatches.MatchState
	err := c.do(ctx, http.MethodPost, matchPath(matchID, "innings"), start, &state)
	return state, err
}

// SubmitBall submits one delivery under the given sequence, retrying
// transient failures until the attempts run out or ctx ends.
func (c *Client) SubmitBall(ctx context.Context, matchID string, sequence int64, ev domainscoring.BallEvent) (scoring.Receipt, error) {
	var receipt scoring.Receipt
	body := domainmatches.BallEntry{Sequence: sequence, Event: ev}
	attempt := 0

	op := func() error {
		attempt++
		err := c.do(ctx, http.MethodPost, matchPath(matchID, "ball-entry"), body, &receipt)
		if err == nil {
			return nil
		}
		if apiErr, ok := AsAPIError(err); ok && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logging.Warn(c.logger, "ball submission retry",
			logging.FieldMatchID, matchID,
			logging.FieldSequence, sequence,
			"attempt", attempt,
			"wait_ms", wait.Milliseconds(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, c.policy(ctx), notify); err != nil {
		return scoring.Receipt{}, err
	}
	return receipt, nil
}

// SubstituteBatter sends in the next batter.
func (c *Client) SubstituteBatter(ctx context.Context, matchID, batterID string) (domainmatches.MatchState, error) {
	var state domainmatches.MatchState
	err := c.do(ctx, http.MethodPost, matchPath(matchID, "substitute"), domainmatches.Substitution{BatterID: batterID}, &state)
	return state, err
}

// DeclareInnings closes the innings in progress.
func (c *Client) DeclareInnings(ctx context.Context, matchID string) (domainmatches.MatchState, error) {
	var state domainmatches.MatchState
	err := c.do(ctx, http.MethodPost, matchPath(matchID, "declare"), nil, &state)
	return state, err
}

// LiveScore fetches the latest state.
func (c *Client) LiveScore(ctx context.Context, matchID string) (domainmatches.MatchState, error) {
	var state domainmatches.MatchState
	err := c.do(ctx, http.MethodGet, matchPath(matchID, "live-score"), nil, &state)
	return state, err
}

// Scorecard fetches batting and bowling figures.
func (c *Client) Scorecard(ctx context.Context, matchID string) (domainmatches.Scorecard, error) {
	var card domainmatches.Scorecard
	err := c.do(ctx, http.MethodGet, matchPath(matchID, "scorecard"), nil, &card)
	return card, err
}

// Log fetches the ordered match log.
func (c *Client) Log(ctx context.Context, matchID string) ([]domainmatches.Entry, error) {
	var payload struct {
		Entries []domainmatches.Entry `json:"entries"`
	}
	err := c.do(ctx, http.MethodGet, matchPath(matchID, "log"), nil, &payload)
	return payload.Entries, err
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialBackoff
	exp.MaxInterval = c.maxBackoff
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxAttempts-1)), ctx)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: resp.Header.Get("X-Request-ID")}
	var payload errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Error
		apiErr.Field = payload.Field
		apiErr.ExpectedSequence = payload.ExpectedSequence
		if payload.RequestID != "" {
			apiErr.RequestID = payload.RequestID
		}
	}
	return apiErr
}

func matchPath(matchID, action string) string {
	return "/api/matches/" + url.PathEscape(matchID) + "/" + action
}
