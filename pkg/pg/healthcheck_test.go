package pg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/magpie/pkg/pg"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	ok := pingFunc(func(context.Context) error { return nil })
	require.NoError(t, pg.Healthcheck(context.Background(), ok))

	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	err := pg.Healthcheck(context.Background(), down)
	assert.ErrorIs(t, err, pg.ErrHealthcheckFailed)
	assert.ErrorContains(t, err, "connection refused")
}
