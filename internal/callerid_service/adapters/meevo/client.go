package meevo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// Config carries the upstream connection settings. TenantID and LocationID
// scope every request to one salon location; their query parameter casing
// differs per endpoint and must be preserved for upstream compatibility.
type Config struct {
	AuthURL           string
	APIURL            string
	ClientID          string
	ClientSecret      string
	TenantID          string
	LocationID        string
	TokenSafetyMargin time.Duration
}

// Client talks to the Meevo public API. The bearer token pair is the only
// mutable state and is shared by all concurrent requests; it is swapped
// atomically under the mutex, so overlapping refreshes may duplicate work
// but can never expose a torn token/expiry pair.
type Client struct {
	cfg        Config
	logger     *slog.Logger
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.TokenSafetyMargin <= 0 {
		cfg.TokenSafetyMargin = 5 * time.Minute
	}
	return &Client{
		cfg:        cfg,
		logger:     logger.With("component", "meevo_client"),
		httpClient: httpClient,
		now:        time.Now,
	}
}

// Token returns a valid bearer token, reusing the cached one while it is
// outside the safety margin of expiry. The hit path makes no network call.
// Failures are reported as domain.ErrAuthFailure.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.tokenExpiry.Add(-c.cfg.TokenSafetyMargin)) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Requesting fresh upstream token")

	body, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal credentials: %v", domain.ErrAuthFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: build token request: %v", domain.ErrAuthFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.ErrorContext(ctx, "Token exchange rejected", "status_code", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("%w: status %d", domain.ErrAuthFailure, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", domain.ErrAuthFailure, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrAuthFailure)
	}

	expiry := c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	c.mu.Lock()
	c.token = tr.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "Upstream token obtained", "expires_in_seconds", tr.ExpiresIn)
	return tr.AccessToken, nil
}

// ClientsPage fetches one 1-indexed page of the client directory. An empty
// result slice means the directory is exhausted. The upstream is known to
// return different result sets for different itemsPerPage values and to lag
// recent writes, so callers must not assume completeness.
func (c *Client) ClientsPage(ctx context.Context, token string, page, itemsPerPage int) ([]ClientRecord, error) {
	endpoint := fmt.Sprintf("%s/clients?tenantid=%s&locationid=%s&PageNumber=%d&ItemsPerPage=%d",
		c.cfg.APIURL, url.QueryEscape(c.cfg.TenantID), url.QueryEscape(c.cfg.LocationID), page, itemsPerPage)

	var list clientListResponse
	if err := c.getJSON(ctx, token, endpoint, &list); err != nil {
		return nil, fmt.Errorf("%w: clients page %d: %v", domain.ErrUpstreamPage, page, err)
	}
	return list.Data, nil
}

// ChangedClientsPage fetches one page of the change feed for records
// modified since the given instant.
func (c *Client) ChangedClientsPage(ctx context.Context, token string, since time.Time, page int) ([]ClientRecord, error) {
	endpoint := fmt.Sprintf("%s/cdc/clients?tenantid=%s&locationid=%s&StartDateUtc=%s&PageNumber=%d",
		c.cfg.APIURL, url.QueryEscape(c.cfg.TenantID), url.QueryEscape(c.cfg.LocationID),
		url.QueryEscape(since.UTC().Format(time.RFC3339)), page)

	var list clientListResponse
	if err := c.getJSON(ctx, token, endpoint, &list); err != nil {
		return nil, fmt.Errorf("%w: cdc page %d: %v", domain.ErrUpstreamPage, page, err)
	}
	return list.Data, nil
}

// ClientByID fetches one client directly. Unlike the paginated directory,
// this path is not subject to the upstream's write lag, which is what makes
// cache verification meaningful. Returns domain.ErrNotFound on 404.
func (c *Client) ClientByID(ctx context.Context, token, id string) (*ClientRecord, error) {
	endpoint := fmt.Sprintf("%s/client/%s?TenantId=%s&LocationId=%s",
		c.cfg.APIURL, url.PathEscape(id), url.QueryEscape(c.cfg.TenantID), url.QueryEscape(c.cfg.LocationID))

	var detail clientDetailResponse
	if err := c.getJSON(ctx, token, endpoint, &detail); err != nil {
		return nil, err
	}
	return &detail.Data, nil
}

func (c *Client) getJSON(ctx context.Context, token, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WarnContext(ctx, "Upstream request failed", "status_code", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
