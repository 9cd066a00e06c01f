package driver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgapigen/pgapigen"
	"github.com/pgapigen/pgapigen/config"
	"github.com/pgapigen/pgapigen/driver"
)

func TestRun_FailsClosedOnUnresolvedSecret(t *testing.T) {
	cfg, err := config.New(
		config.WithConnectionString("env:PGAPIGEN_TEST_UNSET_DSN"),
		config.WithOutDir(t.TempDir()),
	)
	require.NoError(t, err)

	_, err = driver.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pgapigen.ErrConfig))
}
