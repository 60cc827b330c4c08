package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/nfse-api/internal/domain"
)

func TestWrapErr_Clasificacion(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, wrapErr(ctx, "op", nil))

	dup := wrapErr(ctx, "insert empresa", &pgconn.PgError{Code: "23505", Message: "duplicate key"})
	assert.ErrorIs(t, dup, domain.ErrDuplicate)
	assert.NotErrorIs(t, dup, domain.ErrTransientStore)

	for _, code := range []string{"40001", "40P01", "57P01", "08006", "53300"} {
		err := wrapErr(ctx, "update", &pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrTransientStore, code)
	}

	syntax := wrapErr(ctx, "update", &pgconn.PgError{Code: "42601"})
	assert.NotErrorIs(t, syntax, domain.ErrTransientStore)

	plain := wrapErr(ctx, "update", errors.New("cannot scan NULL into *string"))
	assert.NotErrorIs(t, plain, domain.ErrTransientStore)
}

func TestWrapErr_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wrapErr(ctx, "update", errors.New("conn closed"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTransientStore, "cancelación no se reintenta")
}
