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

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/erkineren/homework-monitor/internal/errors"
	"github.com/erkineren/homework-monitor/internal/models"
)

// Practicum expects "Authorization: OAuth <token>" rather than Bearer.
const tokenType = "OAuth"

// maxBodySnippet caps how much of a failed response body is kept for diagnostics.
const maxBodySnippet = 2048

// Client polls the homework_statuses endpoint.
type Client struct {
	client   *http.Client
	endpoint string
	log      zerolog.Logger
	now      func() time.Time
}

// NewClient builds a client authenticating every request with token.
func NewClient(endpoint, token string, timeout time.Duration, log zerolog.Logger) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token, TokenType: tokenType},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	return &Client{
		client:   tc,
		endpoint: endpoint,
		log:      log.With().Str("component", "practicum").Logger(),
		now:      time.Now,
	}
}

// Fetch requests homework status changes since fromDate (unix seconds).
// A non-positive fromDate means "now".
func (c *Client) Fetch(ctx context.Context, fromDate int64) (models.RawResponse, error) {
	if fromDate <= 0 {
		fromDate = c.now().Unix()
	}
	params := map[string]string{"from_date": strconv.FormatInt(fromDate, 10)}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, apperrors.NewEndpointUnreachableError(c.endpoint, params, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperrors.NewEndpointUnreachableError(c.endpoint, params, err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("endpoint", c.endpoint).Interface("params", params).Msg("requesting homework statuses")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewEndpointUnreachableError(c.endpoint, params, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("status", resp.Status).
		Int64("content_length", resp.ContentLength).
		Msg("server returned response")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		c.log.Error().
			Str("endpoint", c.endpoint).
			Int("status_code", resp.StatusCode).
			Msg("endpoint is unavailable")
		return nil, apperrors.NewStatusCodeError(c.endpoint, params, resp.StatusCode, string(body))
	}

	var raw models.RawResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.NewNoExpectedAnswerError(fmt.Sprintf("decoding response body: %v", err))
	}
	return raw, nil
}
