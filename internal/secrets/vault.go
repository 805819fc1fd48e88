package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	vaultapi "github.com/hashicorp/vault/api"
)

// VaultOptions configures the Vault-backed resolver.
type VaultOptions struct {
	Address   string
	Token     string
	Namespace string
	// Mount is the KV v2 secrets engine mount path, default "secret".
	Mount string
}

// VaultResolver resolves coordinates of the form "<path>#<key>" against a
// Vault KV v2 mount.
type VaultResolver struct {
	kv kvReader
}

// kvReader is the slice of the Vault client the resolver needs; tests
// substitute a fake.
type kvReader interface {
	Get(ctx context.Context, path string) (*vaultapi.KVSecret, error)
}

// NewVaultResolver builds a resolver backed by a real Vault client.
func NewVaultResolver(opts VaultOptions) (*VaultResolver, error) {
	address := strings.TrimSpace(opts.Address)
	if address == "" {
		return nil, errors.New("vault address is required")
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("vault token is required")
	}
	mount := strings.Trim(strings.TrimSpace(opts.Mount), "/")
	if mount == "" {
		mount = "secret"
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address
	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client setup: %w", err)
	}
	client.SetToken(opts.Token)
	if ns := strings.TrimSpace(opts.Namespace); ns != "" {
		client.SetNamespace(ns)
	}
	return &VaultResolver{kv: client.KVv2(mount)}, nil
}

func (r *VaultResolver) Resolve(ctx context.Context, coordinate string) (string, error) {
	path, key, err := splitCoordinate(coordinate)
	if err != nil {
		return "", err
	}
	secret, err := r.kv.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault read %q: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("vault path %q has no data", path)
	}
	raw, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("vault path %q has no key %q", path, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("vault key %q at %q is not a string", key, path)
	}
	return value, nil
}

func splitCoordinate(coordinate string) (path, key string, err error) {
	coordinate = strings.TrimSpace(coordinate)
	path, key, found := strings.Cut(coordinate, "#")
	path = strings.Trim(strings.TrimSpace(path), "/")
	key = strings.TrimSpace(key)
	if !found || path == "" || key == "" {
		return "", "", fmt.Errorf("secret coordinate %q is not of the form path#key", coordinate)
	}
	return path, key, nil
}
