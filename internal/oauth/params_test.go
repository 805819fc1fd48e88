package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	rows []SourceOAuthParameter
	err  error
}

func (s *fakeStore) ListSourceOAuthParameters(ctx context.Context) ([]SourceOAuthParameter, error) {
	return s.rows, s.err
}

func paramRow(workspaceID *uuid.UUID, definitionID uuid.UUID, config string) SourceOAuthParameter {
	return SourceOAuthParameter{
		ID:                 uuid.New(),
		SourceDefinitionID: definitionID,
		WorkspaceID:        workspaceID,
		Configuration:      json.RawMessage(config),
	}
}

func TestResolveParameter(t *testing.T) {
	t.Parallel()

	workspaceID := uuid.New()
	definitionID := uuid.New()
	otherWorkspace := uuid.New()

	scoped := paramRow(&workspaceID, definitionID, `{"client_id":"scoped"}`)
	global := paramRow(nil, definitionID, `{"client_id":"global"}`)
	foreign := paramRow(&otherWorkspace, definitionID, `{"client_id":"foreign"}`)

	tests := []struct {
		name    string
		rows    []SourceOAuthParameter
		wantID  uuid.UUID
		wantErr error
	}{
		{
			name:   "workspace scoped row wins",
			rows:   []SourceOAuthParameter{global, scoped},
			wantID: scoped.ID,
		},
		{
			name:   "global row used when no scoped match",
			rows:   []SourceOAuthParameter{foreign, global},
			wantID: global.ID,
		},
		{
			name:    "no match is config not found",
			rows:    []SourceOAuthParameter{foreign},
			wantErr: ErrConfigNotFound,
		},
		{
			name:    "empty store is config not found",
			rows:    nil,
			wantErr: ErrConfigNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveParameter(context.Background(), &fakeStore{rows: test.rows}, workspaceID, definitionID)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ResolveParameter() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveParameter() error = %v", err)
			}
			if got.ID != test.wantID {
				t.Fatalf("ResolveParameter() row = %s, want %s", got.ID, test.wantID)
			}
		})
	}
}

func TestResolveParameterStoreError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection refused")
	_, err := ResolveParameter(context.Background(), &fakeStore{err: storeErr}, uuid.New(), uuid.New())
	if !errors.Is(err, storeErr) {
		t.Fatalf("ResolveParameter() error = %v, want wrapped store error", err)
	}
	if errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("store failure must not be reported as config not found")
	}
}

func TestExtractCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  string
		want    ClientCredentials
		wantErr bool
	}{
		{
			name:   "root level fields",
			config: `{"client_id":"id","client_secret":"secret"}`,
			want:   ClientCredentials{ClientID: "id", ClientSecret: "secret"},
		},
		{
			name:   "nested under credentials",
			config: `{"credentials":{"client_id":"id","client_secret":"secret"}}`,
			want:   ClientCredentials{ClientID: "id", ClientSecret: "secret"},
		},
		{
			name:    "missing client_id",
			config:  `{"credentials":{"client_secret":"secret"}}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			config:  `{"credentials":`,
			wantErr: true,
		},
		{
			name:    "empty blob",
			config:  ``,
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractCredentials(json.RawMessage(test.config))
			if test.wantErr {
				if err == nil {
					t.Fatalf("ExtractCredentials() error = nil, want validation error")
				}
				if !IsValidation(err) {
					t.Fatalf("ExtractCredentials() error = %v, want ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractCredentials() error = %v", err)
			}
			if got != test.want {
				t.Fatalf("ExtractCredentials() = %+v, want %+v", got, test.want)
			}
		})
	}
}
