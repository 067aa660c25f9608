package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

// stubTx satisfies pgx.Tx; only its identity matters here.
type stubTx struct {
	pgx.Tx
	name string
}

type stubQuerier struct {
	Querier
}

func Test_Conn_PrefersContextTransaction(t *testing.T) {
	// arrange
	root := &stubQuerier{}
	tx := &stubTx{name: "outer"}

	// act
	plain := Conn(context.Background(), root)
	inTx := Conn(WithTx(context.Background(), tx), root)

	// assert
	assert.Same(t, root, plain)
	assert.Same(t, tx, inTx)
}

func Test_TxFromContext_IgnoresNil(t *testing.T) {
	_, ok := TxFromContext(WithTx(context.Background(), nil))
	assert.False(t, ok)

	_, ok = TxFromContext(context.Background())
	assert.False(t, ok)
}

func Test_RunInTx_JoinsOuterTransaction(t *testing.T) {
	// No pool is needed: a context that already carries a transaction
	// never begins a new one.
	db := &PostgresDB{}
	tx := &stubTx{name: "outer"}
	ctx := WithTx(context.Background(), tx)

	var seen pgx.Tx
	err := db.RunInTx(ctx, func(txCtx context.Context) error {
		seen, _ = TxFromContext(txCtx)
		return nil
	})

	assert.NoError(t, err)
	assert.Same(t, tx, seen)
}
