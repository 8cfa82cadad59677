package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/benepick/benepick/pkg/adapters/sqlite"
)

func (a *App) policyStore() (*sqlite.PolicyStore, error) {
	db := a.Engine.DB()
	if db == nil {
		return nil, errors.New("no policy database configured")
	}
	return sqlite.NewPolicyStore(db), nil
}

// ImportPolicies loads a YAML seed file into the policy database.
func (a *App) ImportPolicies(ctx context.Context, path string) (int, error) {
	store, err := a.policyStore()
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return store.ImportPolicies(ctx, f)
}

// CountPolicies returns the number of stored policies.
func (a *App) CountPolicies(ctx context.Context) (int, error) {
	store, err := a.policyStore()
	if err != nil {
		return 0, err
	}
	return store.CountPolicies(ctx)
}
