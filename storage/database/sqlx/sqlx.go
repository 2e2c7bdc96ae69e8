// Package sqlxrepos implements the domain repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

const uniqueViolation = "23505"

// constraintErr maps a unique violation on `constraint` to its domain error, if listed.
func constraintErr(err error, constraints map[string]error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		if e, ok := constraints[pqErr.Constraint]; ok {
			return e
		}
	}
	return nil
}

// wrapErr wraps err with msg. A closed connection pool cannot recover, so it is
// reported as a shutdown error.
func wrapErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrConnDone {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}

// trapNoRowsErr maps "no rows" to `notFound`.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return wrapErr(err, msg)
}

// insert runs a named INSERT ... RETURNING id.
func insert(ctx context.Context, exec core.DBExecutor, query string, arg interface{}) (int, error) {
	q, args, err := exec.BindNamed(query, arg)
	if err != nil {
		return 0, err
	}
	var id int
	err = exec.QueryRowxContext(ctx, q, args...).Scan(&id)
	return id, err
}

// mustAffect returns `notFound` when `res` did not affect any row.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// readTx runs fn in a read-only repeatable-read transaction, so that all its queries
// see the same snapshot.
func readTx(ctx context.Context, db core.DB, fn func(tx core.DBExecutor) error) error {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return wrapErr(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return wrapErr(tx.Commit(), "committing transaction")
}

func excludedIDs(ids []int) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	return arr
}
