package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvost/payvost-web-sub011/internal/config"
	"github.com/payvost/payvost-web-sub011/internal/http/handlers"
	"github.com/payvost/payvost-web-sub011/internal/models"
	"github.com/payvost/payvost-web-sub011/internal/server"
	"github.com/payvost/payvost-web-sub011/internal/storage"
	"github.com/payvost/payvost-web-sub011/internal/storage/memory"
)

// runAgainst executes args with a postgres-configured CLI backed by store.
func runAgainst(t *testing.T, store storage.Store, args ...string) (string, error) {
	t.Helper()
	loadConfig = func() (config.Config, error) {
		cfg, err := testConfig()
		cfg.StorageDriver = config.DriverPostgres
		cfg.DatabaseURL = "postgres://unused"
		return cfg, err
	}
	openStore = func(context.Context, config.Config) (storage.Store, handlers.Pinger, error) {
		return store, nil, nil
	}
	t.Cleanup(func() {
		loadConfig = config.Load
		openStore = server.OpenStore
	})

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetRoleGrantsRoleAndAudits(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	u, err := store.CreateUser(ctx, models.User{Username: "folake", Email: "folake@example.com"})
	require.NoError(t, err)

	out, err := runAgainst(t, store, "users", "set-role", "Folake@Example.com", "ADMIN")
	require.NoError(t, err)
	assert.Contains(t, out, "folake is now admin")

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	entries, err := store.QueryAudit(ctx, storage.AuditQuery{Action: models.ActionRoleChanged})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, u.ID, entries[0].ResourceID)
	assert.Equal(t, models.RoleUser, entries[0].Metadata["from"])

	out, err = runAgainst(t, store, "users", "set-role", "folake", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "already has role admin")
}

func TestSetRoleRejectsUnknownRoleAndUser(t *testing.T) {
	store := memory.New()

	_, err := runAgainst(t, store, "users", "set-role", "folake", "owner")
	assert.ErrorContains(t, err, `unknown role "owner"`)

	_, err = runAgainst(t, store, "users", "set-role", "nobody", "support")
	assert.ErrorContains(t, err, `no user matches "nobody"`)

	_, err = runAgainst(t, store, "users", "set-role", "only-one-arg")
	assert.Error(t, err)
}

func TestSetRoleRequiresPostgres(t *testing.T) {
	_, err := run(t, "users", "set-role", "folake", "admin")
	assert.ErrorContains(t, err, "STORAGE_DRIVER=postgres")
}
