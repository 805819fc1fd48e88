package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/open-elt/open-elt/internal/oauth"
)

const redirectURL = "https://airbyte.io"

type memStore struct {
	rows []oauth.SourceOAuthParameter
}

func (s *memStore) ListSourceOAuthParameters(ctx context.Context) ([]oauth.SourceOAuthParameter, error) {
	return s.rows, nil
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func newScope(t *testing.T) (uuid.UUID, uuid.UUID, *memStore) {
	t.Helper()
	workspaceID := uuid.New()
	definitionID := uuid.New()
	store := &memStore{rows: []oauth.SourceOAuthParameter{{
		ID:                 uuid.New(),
		SourceDefinitionID: definitionID,
		WorkspaceID:        &workspaceID,
		Configuration:      json.RawMessage(`{"client_id":"test_client_id","client_secret":"test_client_secret"}`),
	}}}
	return workspaceID, definitionID, store
}

func TestConsentURL(t *testing.T) {
	t.Parallel()

	workspaceID, definitionID, store := newScope(t)
	flow := New(store, nil, oauth.GenerateFunc(func() string { return "state" }))

	got, err := flow.ConsentURL(context.Background(), workspaceID, definitionID, redirectURL)
	if err != nil {
		t.Fatalf("ConsentURL() error = %v", err)
	}
	want := "https://github.com/login/oauth/authorize?client_id=test_client_id&redirect_uri=https%3A%2F%2Fairbyte.io&state=state&response_type=code&scope=repo"
	if got != want {
		t.Fatalf("ConsentURL() = %q, want %q", got, want)
	}
}

func TestCompleteOAuthSendsAcceptHeader(t *testing.T) {
	t.Parallel()

	workspaceID, definitionID, store := newScope(t)

	var tokenRequest *http.Request
	client := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		tokenRequest = r
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewBufferString(`{"access_token":"gho_token","token_type":"bearer","scope":"repo"}`)),
		}, nil
	})}

	flow := New(store, client, oauth.GenerateFunc(func() string { return "state" }))
	got, err := flow.CompleteOAuth(context.Background(), workspaceID, definitionID,
		map[string]string{"code": "test_code"}, redirectURL)
	if err != nil {
		t.Fatalf("CompleteOAuth() error = %v", err)
	}

	want := map[string]any{
		"credentials": map[string]string{
			"access_token": "gho_token",
			"token_type":   "bearer",
			"scope":        "repo",
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CompleteOAuth() = %#v, want %#v", got, want)
	}

	if tokenRequest == nil {
		t.Fatalf("no token request issued")
	}
	if tokenRequest.URL.String() != "https://github.com/login/oauth/access_token" {
		t.Fatalf("token URL = %q, want github token endpoint", tokenRequest.URL)
	}
	if got := tokenRequest.Header.Get("Accept"); got != "application/json" {
		t.Fatalf("Accept header = %q, want application/json", got)
	}
}
