// Package store is the Postgres persistence layer for source definitions
// and per-workspace OAuth parameters.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-elt/open-elt/internal/metrics"
	"github.com/open-elt/open-elt/internal/oauth"
)

// ErrDefinitionNotFound is returned when a source definition ID does not
// exist.
var ErrDefinitionNotFound = errors.New("source definition not found")

// SourceDefinition maps a definition ID to its OAuth provider kind.
type SourceDefinition struct {
	ID   uuid.UUID
	Name string
	Kind string
}

var _ oauth.ParameterStore = (*Store)(nil)

// Store wraps a pgx pool. The metrics emitter is optional; a nil emitter
// drops all telemetry.
type Store struct {
	pool    *pgxpool.Pool
	emitter *metrics.Emitter
}

func New(pool *pgxpool.Pool, emitter *metrics.Emitter) *Store {
	return &Store{pool: pool, emitter: emitter}
}

// ListSourceOAuthParameters returns every OAuth parameter row. Scope
// filtering is the caller's concern (oauth.ResolveParameter).
func (s *Store) ListSourceOAuthParameters(ctx context.Context) ([]oauth.SourceOAuthParameter, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, `
		SELECT id, source_definition_id, workspace_id, configuration
		FROM source_oauth_parameters
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query oauth parameters: %w", err)
	}
	defer rows.Close()

	var out []oauth.SourceOAuthParameter
	for rows.Next() {
		var (
			p           oauth.SourceOAuthParameter
			workspaceID uuid.NullUUID
			config      []byte
		)
		if err := rows.Scan(&p.ID, &p.SourceDefinitionID, &workspaceID, &config); err != nil {
			return nil, fmt.Errorf("scan oauth parameter: %w", err)
		}
		if workspaceID.Valid {
			id := workspaceID.UUID
			p.WorkspaceID = &id
		}
		p.Configuration = json.RawMessage(config)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read oauth parameters: %w", err)
	}

	s.emitter.Timing(metrics.StoreQueryMillis, time.Since(start))
	s.emitter.Gauge(metrics.StoreRowsLoaded, float64(len(out)))
	return out, nil
}

// UpsertSourceOAuthParameter inserts or replaces a parameter row by ID.
func (s *Store) UpsertSourceOAuthParameter(ctx context.Context, p oauth.SourceOAuthParameter) error {
	var workspaceID uuid.NullUUID
	if p.WorkspaceID != nil {
		workspaceID = uuid.NullUUID{UUID: *p.WorkspaceID, Valid: true}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_oauth_parameters (id, source_definition_id, workspace_id, configuration)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET configuration = EXCLUDED.configuration, updated_at = now()`,
		p.ID, p.SourceDefinitionID, workspaceID, []byte(p.Configuration))
	if err != nil {
		return fmt.Errorf("upsert oauth parameter %s: %w", p.ID, err)
	}
	return nil
}

// GetSourceDefinition resolves a definition ID to its provider kind.
func (s *Store) GetSourceDefinition(ctx context.Context, id uuid.UUID) (SourceDefinition, error) {
	start := time.Now()
	var def SourceDefinition
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, kind
		FROM source_definitions
		WHERE id = $1`, id).Scan(&def.ID, &def.Name, &def.Kind)
	if errors.Is(err, pgx.ErrNoRows) {
		return SourceDefinition{}, fmt.Errorf("definition %s: %w", id, ErrDefinitionNotFound)
	}
	if err != nil {
		return SourceDefinition{}, fmt.Errorf("query source definition: %w", err)
	}
	def.Kind = strings.ToLower(strings.TrimSpace(def.Kind))
	s.emitter.Timing(metrics.StoreQueryMillis, time.Since(start))
	return def, nil
}

// ListSourceDefinitions returns all definitions ordered by name.
func (s *Store) ListSourceDefinitions(ctx context.Context) ([]SourceDefinition, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, kind
		FROM source_definitions
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query source definitions: %w", err)
	}
	defer rows.Close()

	var out []SourceDefinition
	for rows.Next() {
		var def SourceDefinition
		if err := rows.Scan(&def.ID, &def.Name, &def.Kind); err != nil {
			return nil, fmt.Errorf("scan source definition: %w", err)
		}
		def.Kind = strings.ToLower(strings.TrimSpace(def.Kind))
		out = append(out, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read source definitions: %w", err)
	}
	return out, nil
}

// UpsertSourceDefinition inserts or renames a definition row by ID.
func (s *Store) UpsertSourceDefinition(ctx context.Context, def SourceDefinition) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO source_definitions (id, name, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, kind = EXCLUDED.kind, updated_at = now()`,
		def.ID, def.Name, strings.ToLower(strings.TrimSpace(def.Kind)))
	if err != nil {
		return fmt.Errorf("upsert source definition %s: %w", def.ID, err)
	}
	return nil
}
