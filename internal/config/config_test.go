package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_DRIVER", "memory")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.Plan.DefaultBaseDays)
	assert.Equal(t, 2, cfg.Plan.MinBaseDays)
	assert.Equal(t, 6, cfg.Plan.MaxBaseDays)
	assert.Equal(t, 15*time.Minute, cfg.S3.URLExpiry)
	assert.Contains(t, cfg.Server.CORSOrigins, "http://localhost:3000")
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  driver: mongo
  name: progress_test
jwt:
  secret: from-file
plan:
  default_base_days: 4
  timezone: America/Argentina/Buenos_Aires
s3:
  bucket_name: exports
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "progress_test", cfg.Database.Name)
	assert.Equal(t, 4, cfg.Plan.DefaultBaseDays)
	assert.True(t, cfg.S3.Enabled())

	loc, err := cfg.Plan.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Argentina/Buenos_Aires", loc.String())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	require.ErrorContains(t, err, "jwt.secret")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Driver: DriverMemory},
		JWT:      JWTConfig{Secret: "x"},
		Plan:     PlanConfig{DefaultBaseDays: 3, MinBaseDays: 2, MaxBaseDays: 6},
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Database.Driver = "postgres"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Plan.MinBaseDays = 5
	bad.Plan.MaxBaseDays = 4
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Plan.DefaultBaseDays = 7
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Plan.Timezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a, ,http://b "))
}
