package memory

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

type txKey struct{}

// journal collects undo steps of one transaction.
type journal struct {
	undo []func()
}

func (j *journal) record(step func()) {
	j.undo = append(j.undo, step)
}

func journalFromContext(ctx context.Context) *journal {
	j, _ := ctx.Value(txKey{}).(*journal)
	return j
}

// TxManager runs functions atomically against the store: when fn fails or
// the context expires, every write made through the context is undone.
// Isolation between concurrent transactions is left to the callers' key locks.
type TxManager struct {
	store *Store
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if journalFromContext(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: memory tx: %v", domain.ErrStore, err)
	}

	j := &journal{}
	err := fn(context.WithValue(ctx, txKey{}, j))
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: memory tx: %v", domain.ErrStore, ctx.Err())
	}
	if err != nil {
		m.rollback(j)
		return err
	}
	return nil
}

func (m *TxManager) rollback(j *journal) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}
