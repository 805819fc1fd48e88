// Package gitlab is the GitLab OAuth provider: consent against
// gitlab.com/oauth/authorize with the read_api scope and token exchange
// against gitlab.com/oauth/token.
package gitlab

import (
	"net/http"

	"github.com/open-elt/open-elt/internal/oauth"
)

const Kind = "gitlab"

const (
	authorizeURL = "https://gitlab.com/oauth/authorize"
	tokenURL     = "https://gitlab.com/oauth/token"
	scope        = "read_api"
)

// New builds the GitLab flow. client and state may be nil to use the
// defaults.
func New(store oauth.ParameterStore, client *http.Client, state oauth.StateGenerator) oauth.Flow {
	return oauth.NewCodeFlow(Kind, oauth.Endpoints{
		AuthorizeURL: authorizeURL,
		TokenURL:     tokenURL,
		Scope:        scope,
	}, store, client, state)
}
