package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// Versioned is a row guarded by a row_version column. Pointer types only:
// a nil value means the row was not found.
type Versioned interface {
	comparable
	GetRowVersion() int64
	SetRowVersion(int64)
}

// WriteIfVersion persists row only if its stored row_version still equals
// expected. Zero rows affected means another writer got there first.
type WriteIfVersion[T Versioned] func(ctx context.Context, row T, expected int64) (pgconn.CommandTag, error)

// UpdateVersioned loads a row, lets mutate change it, and writes it back
// guarded by the version it was read at. A lost race starts over from a
// fresh read; after attempts losses it gives up with
// utils.ErrRowVersionConflict.
func UpdateVersioned[T Versioned](
	ctx context.Context,
	attempts int,
	load func(context.Context) (T, error),
	write WriteIfVersion[T],
	mutate func(T) error,
) error {
	if attempts < 1 {
		attempts = constants.OptimisticLockAttempts
	}
	var missing T
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := load(ctx)
		if err != nil {
			return err
		}
		if row == missing {
			return pgx.ErrNoRows
		}

		readAt := row.GetRowVersion()
		if err := mutate(row); err != nil {
			return err
		}
		tag, err := write(ctx, row, readAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 1 {
			row.SetRowVersion(readAt + 1)
			return nil
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts", utils.ErrRowVersionConflict, attempts)
}

// versionedTable binds UpdateVersioned to one table: how to read a row by
// id, how to write it back, and how many races to tolerate.
type versionedTable[T Versioned] struct {
	db          DB
	selectByID  string
	scan        func(pgx.Row) (T, error)
	write       WriteIfVersion[T]
	maxAttempts int
}

func (v *versionedTable[T]) load(ctx context.Context, id uuid.UUID) (T, error) {
	return v.scan(v.db.QueryRow(ctx, v.selectByID, id))
}

func (v *versionedTable[T]) update(ctx context.Context, id uuid.UUID, mutate func(T) error) error {
	load := func(ctx context.Context) (T, error) { return v.load(ctx, id) }
	return UpdateVersioned(ctx, v.maxAttempts, load, v.write, mutate)
}
