package lconfig

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"
)

type TestStruct struct {
	StringVal    string            `env:"STRING_VAL"`
	DefaultValue string            `env:"NON_EXISTANT" envDefault:"Hello"`
	EnvVal       string            `env:"ENV_VAL"`
	IntVal       int               `env:"INT_VAL"`
	BoolVal      bool              `env:"BOOL_VAL"`
	F64Val       float64           `env:"FLOAT64_VAL"`
	F64Array     []float64         `env:"FLOAT64_ARRAY" envSeparator:" "`
	TimeDuration time.Duration     `env:"TIME_DURATION" envDefault:"5s"`
	BodySize     resource.Quantity `env:"BODY_SIZE" envDefault:"1Mi"`
	Labels       map[string]string `env:"LABELS"`
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"STRING_VAL":    "a string value\n",
		"INT_VAL":       "123",
		"BOOL_VAL":      "true",
		"FLOAT64_VAL":   "2.5",
		"FLOAT64_ARRAY": "0.0 0.1 0.2",
		"ENV_VAL":       "overridden by the process",
	}
	for name, value := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value), 0600))
	}
	t.Setenv("ENV_VAL", "env value here")
	t.Setenv(ConfigDirEnv, dir)

	var test TestStruct
	require.NoError(t, Parse(&test))

	assert.Equal(t, "a string value", test.StringVal)
	assert.Equal(t, "Hello", test.DefaultValue)
	assert.Equal(t, "env value here", test.EnvVal)
	assert.Equal(t, 123, test.IntVal)
	assert.True(t, test.BoolVal)
	assert.True(t, math.Abs(2.5-test.F64Val) < 0.001)
	assert.Len(t, test.F64Array, 3)
	assert.Equal(t, 5*time.Second, test.TimeDuration)
	assert.Equal(t, int64(1<<20), test.BodySize.Value())
}

func TestCustomParsers(t *testing.T) {
	t.Setenv(ConfigDirEnv, "")
	t.Setenv("BODY_SIZE", "64Ki")
	t.Setenv("LABELS", `{"team":"hr"}`)

	var test TestStruct
	require.NoError(t, Parse(&test))
	assert.Equal(t, int64(64*1024), test.BodySize.Value())
	assert.Equal(t, map[string]string{"team": "hr"}, test.Labels)

	t.Setenv("BODY_SIZE", "lots")
	assert.Error(t, Parse(&test))
}

func TestMissingConfigDir(t *testing.T) {
	t.Setenv(ConfigDirEnv, filepath.Join(t.TempDir(), "missing"))
	var test TestStruct
	assert.Error(t, Parse(&test))
}

func TestEnvironmentSkipsMountInternals(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/abtest/ADMIN_ROLE_VALUE", []byte(" hr-admin \n"), 0600))
	require.NoError(t, afero.WriteFile(fs, "/etc/abtest/..2026_10_17/ADMIN_ROLE_VALUE", []byte("stale"), 0600))
	require.NoError(t, afero.WriteFile(fs, "/etc/abtest/.hidden", []byte("x"), 0600))
	require.NoError(t, fs.MkdirAll("/etc/abtest/nested", 0700))

	merged, err := environment(fs, "/etc/abtest", []string{"SQL_DB_OPTIONS=a=b&c=d"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ADMIN_ROLE_VALUE": "hr-admin",
		"SQL_DB_OPTIONS":   "a=b&c=d",
	}, merged)
}

func TestEnvironmentProcessWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/MIGRATE", []byte("false"), 0600))

	merged, err := environment(fs, "/cfg", []string{"MIGRATE=true"})
	require.NoError(t, err)
	assert.Equal(t, "true", merged["MIGRATE"])

	_, err = environment(fs, "/cfg/MIGRATE", nil)
	assert.Error(t, err)
}

func TestLoadStaticYamlConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/secrets.yaml", []byte("username: alice\npassword: s3cret\n"), 0600))

	var secrets struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	require.NoError(t, LoadStaticYamlConfig("/secrets.yaml", fs, &secrets))
	assert.Equal(t, "alice", secrets.Username)
	assert.Equal(t, "s3cret", secrets.Password)

	assert.Error(t, LoadStaticYamlConfig("/absent.yaml", fs, &secrets))
}
