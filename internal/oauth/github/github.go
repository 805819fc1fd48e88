// Package github is the GitHub OAuth provider. GitHub's token endpoint
// answers with form-encoded data unless asked for JSON, so the token
// request carries an explicit Accept header.
package github

import (
	"net/http"

	"github.com/open-elt/open-elt/internal/oauth"
)

const Kind = "github"

const (
	authorizeURL = "https://github.com/login/oauth/authorize"
	tokenURL     = "https://github.com/login/oauth/access_token"
	scope        = "repo"
)

// New builds the GitHub flow. client and state may be nil to use the
// defaults.
func New(store oauth.ParameterStore, client *http.Client, state oauth.StateGenerator) oauth.Flow {
	return oauth.NewCodeFlow(Kind, oauth.Endpoints{
		AuthorizeURL: authorizeURL,
		TokenURL:     tokenURL,
		Scope:        scope,
		TokenHeaders: map[string]string{"Accept": "application/json"},
	}, store, client, state)
}
