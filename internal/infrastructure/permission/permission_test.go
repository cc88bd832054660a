package permission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orris-inc/f2fpay/internal/shared/logger"
)

func setupEnforcer(t *testing.T) (*gorm.DB, *Enforcer) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	e, err := NewEnforcer(db, logger.NewNopLogger())
	require.NoError(t, err)
	return db, e
}

const seedYAML = `
policies:
  - role: support
    resource: payments
    actions: [read]
  - role: admin
    resource: payments
    actions: [refund]
inherits:
  - role: admin
    parent: support
`

func TestPolicySeed_Apply(t *testing.T) {
	_, e := setupEnforcer(t)

	seed, err := ParsePolicySeed([]byte(seedYAML))
	require.NoError(t, err)
	require.NoError(t, seed.Apply(e, logger.NewNopLogger()))
	// applying twice is harmless
	require.NoError(t, seed.Apply(e, logger.NewNopLogger()))

	tests := []struct {
		role, resource, action string
		want                   bool
	}{
		{"admin", "payments", "refund", true},
		{"admin", "payments", "read", true},
		{"support", "payments", "read", true},
		{"support", "payments", "refund", false},
		{"guest", "payments", "read", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.action, func(t *testing.T) {
			allowed, err := e.Enforce(tt.role, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestEnforcer_PoliciesPersist(t *testing.T) {
	db, e := setupEnforcer(t)
	require.NoError(t, DefaultPolicySeed().Apply(e, logger.NewNopLogger()))

	reloaded, err := NewEnforcer(db, logger.NewNopLogger())
	require.NoError(t, err)

	allowed, err := reloaded.Enforce("admin", "payments", "refund")
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, reloaded.RemovePolicy("admin", "payments", "refund"))
	allowed, err = reloaded.Enforce("admin", "payments", "refund")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestLoadPolicySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadPolicySeed(path)
	require.NoError(t, err)
	assert.Len(t, seed.Policies, 2)
	assert.Equal(t, RoleInheritance{Role: "admin", Parent: "support"}, seed.Inherits[0])

	_, err = ParsePolicySeed([]byte("policies:\n  - role: admin\n"))
	assert.Error(t, err)

	_, err = LoadPolicySeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
