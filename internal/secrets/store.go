package secrets

import (
	"context"

	"github.com/open-elt/open-elt/internal/metrics"
	"github.com/open-elt/open-elt/internal/oauth"
)

// HydratingStore decorates a ParameterStore so that every configuration
// blob is hydrated before a flow sees it.
type HydratingStore struct {
	inner    oauth.ParameterStore
	resolver Resolver
	emitter  *metrics.Emitter
}

var _ oauth.ParameterStore = (*HydratingStore)(nil)

func NewHydratingStore(inner oauth.ParameterStore, resolver Resolver, emitter *metrics.Emitter) *HydratingStore {
	return &HydratingStore{inner: inner, resolver: resolver, emitter: emitter}
}

func (s *HydratingStore) ListSourceOAuthParameters(ctx context.Context) ([]oauth.SourceOAuthParameter, error) {
	rows, err := s.inner.ListSourceOAuthParameters(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		hydrated, changed, err := HydrateConfiguration(ctx, s.resolver, rows[i].Configuration)
		if err != nil {
			s.emitter.Count(metrics.SecretsResolveErrors, 1)
			return nil, err
		}
		if changed {
			s.emitter.Count(metrics.SecretsResolvedTotal, 1)
		}
		rows[i].Configuration = hydrated
	}
	return rows, nil
}
