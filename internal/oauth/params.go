package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SourceOAuthParameter is one per-workspace, per-source-definition OAuth
// credential row from the configuration store. A nil WorkspaceID marks an
// instance-wide row that applies to every workspace without a scoped row.
type SourceOAuthParameter struct {
	ID                 uuid.UUID
	SourceDefinitionID uuid.UUID
	WorkspaceID        *uuid.UUID
	Configuration      json.RawMessage
}

// Global reports whether the row is instance-wide rather than
// workspace-scoped.
func (p SourceOAuthParameter) Global() bool {
	return p.WorkspaceID == nil
}

// ParameterStore lists every OAuth parameter row visible to the caller.
// Scope filtering happens client-side in ResolveParameter.
type ParameterStore interface {
	ListSourceOAuthParameters(ctx context.Context) ([]SourceOAuthParameter, error)
}

// ResolveParameter picks the parameter row for (workspaceID, definitionID).
// Workspace-scoped rows win over instance-wide rows; zero matches yield
// ErrConfigNotFound.
func ResolveParameter(ctx context.Context, store ParameterStore, workspaceID, definitionID uuid.UUID) (SourceOAuthParameter, error) {
	rows, err := store.ListSourceOAuthParameters(ctx)
	if err != nil {
		return SourceOAuthParameter{}, fmt.Errorf("list oauth parameters: %w", err)
	}

	var global *SourceOAuthParameter
	for i := range rows {
		row := rows[i]
		if row.SourceDefinitionID != definitionID {
			continue
		}
		if row.WorkspaceID != nil && *row.WorkspaceID == workspaceID {
			return row, nil
		}
		if row.WorkspaceID == nil && global == nil {
			global = &rows[i]
		}
	}
	if global != nil {
		return *global, nil
	}
	return SourceOAuthParameter{}, fmt.Errorf("workspace %s definition %s: %w", workspaceID, definitionID, ErrConfigNotFound)
}

// ClientCredentials are the provider app credentials extracted from a
// parameter row's configuration blob.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

type credentialsBlob struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Credentials  *struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	} `json:"credentials"`
}

// ExtractCredentials reads client_id/client_secret from a configuration
// blob, either at the root or nested under "credentials". Malformed JSON
// or a missing client_id is a validation error.
func ExtractCredentials(raw json.RawMessage) (ClientCredentials, error) {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "" {
		return ClientCredentials{}, &ValidationError{Reason: "empty oauth parameter configuration"}
	}
	var blob credentialsBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return ClientCredentials{}, &ValidationError{Reason: "malformed oauth parameter configuration: " + err.Error()}
	}

	creds := ClientCredentials{ClientID: blob.ClientID, ClientSecret: blob.ClientSecret}
	if blob.Credentials != nil {
		if creds.ClientID == "" {
			creds.ClientID = blob.Credentials.ClientID
		}
		if creds.ClientSecret == "" {
			creds.ClientSecret = blob.Credentials.ClientSecret
		}
	}
	if strings.TrimSpace(creds.ClientID) == "" {
		return ClientCredentials{}, &ValidationError{Reason: "configuration is missing client_id"}
	}
	return creds, nil
}
