// Package secrets hydrates OAuth parameter configurations whose secret
// fields are stored out-of-band and referenced by coordinate, e.g.
// {"client_secret": {"_secret": "oauth/gitlab#client_secret"}}.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// SecretKey marks a JSON object node as a secret reference.
const SecretKey = "_secret"

// Resolver fetches a secret value by coordinate. Coordinates are opaque to
// this package beyond being non-empty strings.
type Resolver interface {
	Resolve(ctx context.Context, coordinate string) (string, error)
}

// ResolveFunc adapts a function to a Resolver.
type ResolveFunc func(ctx context.Context, coordinate string) (string, error)

func (f ResolveFunc) Resolve(ctx context.Context, coordinate string) (string, error) {
	return f(ctx, coordinate)
}

// HydrateConfiguration walks a configuration blob and replaces every
// {"_secret": coordinate} node with the resolved value, reporting whether
// anything was replaced. Blobs without secret references come back
// unchanged. An unresolvable coordinate is an error; a half-hydrated
// configuration must never reach a flow.
func HydrateConfiguration(ctx context.Context, r Resolver, raw json.RawMessage) (json.RawMessage, bool, error) {
	if len(raw) == 0 {
		return raw, false, nil
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, false, fmt.Errorf("parse configuration: %w", err)
	}

	hydrated, changed, err := hydrateNode(ctx, r, node)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return raw, false, nil
	}
	out, err := json.Marshal(hydrated)
	if err != nil {
		return nil, false, fmt.Errorf("encode hydrated configuration: %w", err)
	}
	return out, true, nil
}

func hydrateNode(ctx context.Context, r Resolver, node any) (any, bool, error) {
	switch v := node.(type) {
	case map[string]any:
		if coord, ok := secretCoordinate(v); ok {
			if r == nil {
				return nil, false, fmt.Errorf("secret coordinate %q present but no resolver configured", coord)
			}
			value, err := r.Resolve(ctx, coord)
			if err != nil {
				return nil, false, fmt.Errorf("resolve secret %q: %w", coord, err)
			}
			return value, true, nil
		}
		changed := false
		for key, child := range v {
			hydrated, childChanged, err := hydrateNode(ctx, r, child)
			if err != nil {
				return nil, false, err
			}
			if childChanged {
				v[key] = hydrated
				changed = true
			}
		}
		return v, changed, nil
	case []any:
		changed := false
		for i, child := range v {
			hydrated, childChanged, err := hydrateNode(ctx, r, child)
			if err != nil {
				return nil, false, err
			}
			if childChanged {
				v[i] = hydrated
				changed = true
			}
		}
		return v, changed, nil
	default:
		return node, false, nil
	}
}

func secretCoordinate(node map[string]any) (string, bool) {
	if len(node) != 1 {
		return "", false
	}
	raw, ok := node[SecretKey]
	if !ok {
		return "", false
	}
	coord, ok := raw.(string)
	if !ok || strings.TrimSpace(coord) == "" {
		return "", false
	}
	return coord, true
}
