// Package openapi implements the clients for the token-authenticated
// open platform API: tenant token issuance and contract search.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"contract-chat-mapping/internal/infra/httpx"
)

// ErrAuthFailed marks a failed or malformed token issuance.
var ErrAuthFailed = errors.New("auth failed")

// tokenSkew is how much remaining validity a cached token needs before
// a refresh is forced.
const tokenSkew = 120 * time.Second

const (
	tokenPath  = "/open-apis/auth/v3/tenant_access_token/internal"
	searchPath = "/open-apis/contract/v1/contracts/search"
)

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
	ExpiresIn         int    `json:"expires_in"`
}

// TokenSource caches the tenant access token and refreshes it through
// the transport when fewer than tokenSkew seconds of validity remain.
// The mutex is held across check-and-refresh, so concurrent callers
// await a single in-flight refresh instead of issuing their own.
type TokenSource struct {
	appID     string
	appSecret string
	endpoint  string
	http      *httpx.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewTokenSource creates a token cache for the given app credentials
// against the platform base URL.
func NewTokenSource(appID, appSecret, baseURL string, client *httpx.Client) *TokenSource {
	return &TokenSource{
		appID:     appID,
		appSecret: appSecret,
		endpoint:  baseURL + tokenPath,
		http:      client,
		now:       time.Now,
	}
}

// Token returns a bearer token with at least tokenSkew of validity,
// refreshing it if needed.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && t.now().Before(t.expiresAt.Add(-tokenSkew)) {
		return t.token, nil
	}

	resp, err := t.http.PostJSON(ctx, "auth", t.endpoint, nil, tokenRequest{
		AppID:     t.appID,
		AppSecret: t.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return "", fmt.Errorf("%w: http %d", ErrAuthFailed, resp.Status)
	}

	var body tokenResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if body.TenantAccessToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrAuthFailed)
	}

	expire := body.Expire
	if expire == 0 {
		expire = body.ExpiresIn
	}
	if expire == 0 {
		expire = 3600
	}

	t.token = body.TenantAccessToken
	t.expiresAt = t.now().Add(time.Duration(expire) * time.Second)
	return t.token, nil
}
