// Package oauth implements the per-provider OAuth2 authorization-code
// flow: deterministic consent URL construction from stored per-workspace
// credentials, and a single code-for-token exchange against the provider's
// token endpoint. Provider packages supply the fixed wire constants.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// CredentialsKey is the fixed top-level key wrapping the provider's token
// payload in a completion result.
const CredentialsKey = "credentials"

// Flow is the two-operation capability set every OAuth provider exposes.
type Flow interface {
	// Kind is the provider key used for dispatch, e.g. "gitlab".
	Kind() string
	// ConsentURL builds the provider consent page URL for the scope's
	// stored client credentials.
	ConsentURL(ctx context.Context, workspaceID, definitionID uuid.UUID, redirectURL string) (string, error)
	// CompleteOAuth exchanges the authorization code from the provider
	// callback query for tokens.
	CompleteOAuth(ctx context.Context, workspaceID, definitionID uuid.UUID, query map[string]string, redirectURL string) (map[string]any, error)
}

// Endpoints holds the provider-fixed constants of an authorization-code
// flow.
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
	// Scope is the provider-fixed scope; empty omits the parameter.
	Scope string
	// TokenHeaders are extra headers for the token request (e.g. GitHub
	// requires Accept: application/json to get a JSON response).
	TokenHeaders map[string]string
}

// CodeFlow is the shared authorization-code implementation configured with
// a provider's Endpoints. It holds no state between the two operations;
// each call re-resolves the parameter row and issues at most one outbound
// request.
type CodeFlow struct {
	kind      string
	endpoints Endpoints
	store     ParameterStore
	client    *http.Client
	state     StateGenerator
}

// NewCodeFlow builds a provider flow. A nil client falls back to
// http.DefaultClient and a nil state generator to the random default.
func NewCodeFlow(kind string, ep Endpoints, store ParameterStore, client *http.Client, state StateGenerator) *CodeFlow {
	if client == nil {
		client = http.DefaultClient
	}
	if state == nil {
		state = NewRandomStateGenerator()
	}
	return &CodeFlow{
		kind:      strings.ToLower(strings.TrimSpace(kind)),
		endpoints: ep,
		store:     store,
		client:    client,
		state:     state,
	}
}

func (f *CodeFlow) Kind() string { return f.kind }

// ConsentURL produces the authorization URL with a fixed query order:
// client_id, redirect_uri, state, response_type, scope. The order is part
// of the contract and must not change.
func (f *CodeFlow) ConsentURL(ctx context.Context, workspaceID, definitionID uuid.UUID, redirectURL string) (string, error) {
	param, err := ResolveParameter(ctx, f.store, workspaceID, definitionID)
	if err != nil {
		return "", err
	}
	creds, err := ExtractCredentials(param.Configuration)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(f.endpoints.AuthorizeURL)
	b.WriteString("?client_id=")
	b.WriteString(url.QueryEscape(creds.ClientID))
	b.WriteString("&redirect_uri=")
	b.WriteString(url.QueryEscape(redirectURL))
	b.WriteString("&state=")
	b.WriteString(url.QueryEscape(f.state.GenerateState()))
	b.WriteString("&response_type=code")
	if f.endpoints.Scope != "" {
		b.WriteString("&scope=")
		b.WriteString(url.QueryEscape(f.endpoints.Scope))
	}
	return b.String(), nil
}

// CompleteOAuth posts the authorization code to the token endpoint and
// returns the provider's token payload under CredentialsKey, unmodified.
// There is no retry and no token validation.
func (f *CodeFlow) CompleteOAuth(ctx context.Context, workspaceID, definitionID uuid.UUID, query map[string]string, redirectURL string) (map[string]any, error) {
	param, err := ResolveParameter(ctx, f.store, workspaceID, definitionID)
	if err != nil {
		return nil, err
	}
	creds, err := ExtractCredentials(param.Configuration)
	if err != nil {
		return nil, err
	}
	code, ok := query["code"]
	if !ok || strings.TrimSpace(code) == "" {
		return nil, &ValidationError{Reason: "callback query is missing code"}
	}

	form := url.Values{}
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range f.endpoints.TokenHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange with %s: %w", f.kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("token endpoint for %s returned status %d", f.kind, resp.StatusCode)
	}

	tokens, err := flattenTokenResponse(body)
	if err != nil {
		return nil, err
	}
	return map[string]any{CredentialsKey: tokens}, nil
}

// flattenTokenResponse decodes the provider's JSON token payload into a
// flat string-to-string map. Scalars are rendered to strings; nested
// structures are a validation error since the contract fixes a flat map.
func flattenTokenResponse(body []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ValidationError{Reason: "malformed token response: " + err.Error()}
	}
	flat := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			flat[k] = val
		case float64:
			if val == math.Trunc(val) && math.Abs(val) < 1e15 {
				flat[k] = strconv.FormatInt(int64(val), 10)
			} else {
				flat[k] = strconv.FormatFloat(val, 'f', -1, 64)
			}
		case bool:
			flat[k] = strconv.FormatBool(val)
		case nil:
			flat[k] = ""
		default:
			return nil, &ValidationError{Reason: "token response field " + k + " is not a scalar"}
		}
	}
	return flat, nil
}
