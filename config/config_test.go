package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/config"
)

func TestNew_RequiresConnectionStringAndOutDir(t *testing.T) {
	_, err := config.New()
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgapigen.ErrConfig))

	_, err = config.New(config.WithConnectionString("env:DATABASE_URL"))
	require.Error(t, err, "outDir is still missing")
}

func TestNew_Defaults(t *testing.T) {
	c, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithOutDir("./out"),
	)
	require.NoError(t, err)
	assert.Equal(t, "public", c.Schema)
	assert.Equal(t, 3, c.IncludeMethodsDepth)
	assert.Equal(t, config.DateTypeNative, c.DateType)
	assert.True(t, c.OutDir.Single())
	assert.Equal(t, "./out/sdk", c.OutDir.ClientDir())
}

func TestWithConnectionString_RejectsLiteral(t *testing.T) {
	_, err := config.New(
		config.WithConnectionString("postgres://admin:hunter2@db/app"),
		config.WithOutDir("./out"),
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgapigen.ErrConfig))
}

func TestWithConnectionString_RejectsEmptyEnvName(t *testing.T) {
	_, err := config.New(
		config.WithConnectionString("env:"),
		config.WithOutDir("./out"),
	)
	require.Error(t, err)
}

func TestWithSplitOutDir(t *testing.T) {
	c, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithSplitOutDir("./server", "./client"),
	)
	require.NoError(t, err)
	assert.False(t, c.OutDir.Single())
	assert.Equal(t, "./client", c.OutDir.ClientDir())
}

func TestWithIncludeMethodsDepth_RejectsNonPositive(t *testing.T) {
	_, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithOutDir("./out"),
		config.WithIncludeMethodsDepth(0),
	)
	require.Error(t, err)
}

func TestWithDateType_RejectsUnknown(t *testing.T) {
	_, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithOutDir("./out"),
		config.WithDateType("timestamp"),
	)
	require.Error(t, err)
}

func TestWithAuth_RejectsHardcodedAPIKey(t *testing.T) {
	_, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithOutDir("./out"),
		config.WithAuth(config.Auth{APIKeys: []config.Secret{"sk-literal-key"}}),
	)
	require.Error(t, err)
}

func TestWithAuth_AcceptsEnvIndirectedKeys(t *testing.T) {
	c, err := config.New(
		config.WithConnectionString("env:DATABASE_URL"),
		config.WithOutDir("./out"),
		config.WithAuth(config.Auth{APIKeys: []config.Secret{"env:API_KEY"}, APIKeyHeader: "X-API-Key"}),
	)
	require.NoError(t, err)
	assert.Equal(t, "X-API-Key", c.Auth.APIKeyHeader)
}

func TestSecret_ResolveReadsEnv(t *testing.T) {
	t.Setenv("PGAPIGEN_TEST_SECRET", "super-secret-value")
	s := config.Secret("env:PGAPIGEN_TEST_SECRET")
	v, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "super-secret-value", v)
}

func TestSecret_ResolveFailsClosedWhenUnset(t *testing.T) {
	os.Unsetenv("PGAPIGEN_TEST_SECRET_UNSET")
	s := config.Secret("env:PGAPIGEN_TEST_SECRET_UNSET")
	_, err := s.Resolve()
	require.Error(t, err)
}

func TestSecret_ResolveEmptyIsNoop(t *testing.T) {
	var s config.Secret
	v, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}
