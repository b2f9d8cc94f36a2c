package backend

// Package backend is the typed REST client for the school API. The API is
// an external collaborator: this package wires requests, attaches bearer
// credentials through the Authenticator, and maps the backend's error body
// convention into the application error taxonomy.

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
	"time"

	domainauth "github.com/escolanet/escola-ui-api/internal/domain/auth"
	apperrors "github.com/escolanet/escola-ui-api/internal/errors"
	"github.com/escolanet/escola-ui-api/internal/ports"
)

const defaultTimeout = 15 * time.Second

// ClientOptions groups dependencies for Client.
type ClientOptions struct {
	// BaseURL is the backend root including the API prefix,
	// e.g. "http://localhost:8000/api/v1".
	BaseURL string
	// HTTPClient is the transport to use; its RoundTripper is typically an
	// *Authenticator. Defaults to a plain client with a sane timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the school REST backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Compile-time check: the client is the real AuthBackend.
var _ ports.AuthBackend = (*Client)(nil)

// NewClient constructs a new backend client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("backend BaseURL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, senha string) (domainauth.TokenPair, error) {
	var pair domainauth.TokenPair
	body := map[string]string{"email": email, "senha": senha}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: body}, &pair); err != nil {
		return domainauth.TokenPair{}, err
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error) {
	var pair domainauth.TokenPair
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/refresh", body: body}, &pair); err != nil {
		return domainauth.TokenPair{}, err
	}
	return pair, nil
}

// Me fetches the authenticated user's profile. The token is passed
// explicitly because this call may run before a session is established.
func (c *Client) Me(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	var identity domainauth.Identity
	req := request{method: http.MethodGet, path: "/users/me", bearer: accessToken}
	if err := c.do(ctx, req, &identity); err != nil {
		return domainauth.Identity{}, err
	}
	return identity, nil
}

// request groups parameters for one backend call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// bearer overrides the transport-level credential for this call.
	bearer string
}

// do executes a request and decodes the JSON response into out (nil to
// discard). Transport failures map to the network error code; non-2xx
// statuses map through the backend's {detail: ...} convention.
func (c *Client) do(ctx context.Context, r request, out any) error {
	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var payload io.Reader
	if r.body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(r.body); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		payload = buf
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode response body")
	}
	return nil
}

// apiErrorBody is the backend error convention:
// {detail: string | array-of-{msg: string}}.
type apiErrorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (c *Client) errorFromResponse(resp *http.Response) error {
	detail := decodeDetail(resp.Body)
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	return apperrors.FromStatus(resp.StatusCode, detail)
}

func decodeDetail(body io.Reader) string {
	var envelope apiErrorBody
	if err := json.NewDecoder(body).Decode(&envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// listQuery builds the backend's skip/limit pagination query.
func listQuery(p ListParams) url.Values {
	q := url.Values{}
	q.Set("skip", fmt.Sprintf("%d", p.Skip))
	limit := p.Limit
	if limit <= 0 {
		limit = 100
	}
	q.Set("limit", fmt.Sprintf("%d", limit))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

// ListParams is the common pagination/filter surface of list endpoints.
type ListParams struct {
	Skip   int
	Limit  int
	Search string
}
