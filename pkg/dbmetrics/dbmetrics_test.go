package dbmetrics

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTx struct {
	DBExecutor
}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeDB struct {
	DBExecutor
}

func TestGetExecutor(t *testing.T) {
	db := &fakeDB{}
	tx := &fakeTx{}

	ctx := context.Background()
	assert.False(t, IsInTransaction(ctx))
	assert.Same(t, db, GetExecutor(ctx, db))

	txCtx := WithTx(ctx, tx)
	assert.True(t, IsInTransaction(txCtx))
	assert.Same(t, tx, GetExecutor(txCtx, db))
}

func TestOperation(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "SELECT id FROM appointments", want: "select"},
		{query: "  insert into appointments (id)", want: "insert"},
		{query: "UPDATE appointments SET status = 1", want: "update"},
		{query: "WITH x AS (SELECT 1) SELECT * FROM x", want: "with"},
		{query: "LOCK TABLE appointments", want: "other"},
		{query: "", want: "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Operation(tt.query), tt.query)
	}
}

var _ TxExecutor = (*Tx)(nil)
var _ DBExecutor = (*sql.DB)(nil)
