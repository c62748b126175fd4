package util

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	bobCtx "github.com/mpapenbr/racetracker-store/pkg/repository/bob/context"
)

const uniqueViolation = "23505"

// Executor returns the executor of a running transaction or conn
func Executor(ctx context.Context, conn bob.Executor) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return conn
}

// TranslateErr maps driver errors to the errors of the api package
func TranslateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return api.ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(api.ErrDuplicate, err)
	}
	return err
}

func Count(ctx context.Context, exec bob.Executor, table string) (int, error) {
	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From(table),
	)
	ret, err := bob.One(ctx, exec, q, scan.SingleColumnMapper[int])
	return ret, TranslateErr(err)
}

// Affected returns the number of rows affected by a statement
func Affected(res sql.Result, err error) (int, error) {
	if err != nil {
		return 0, TranslateErr(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
