//nolint:whitespace // can't make both editor and linter happy
package runner

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/util"
)

const tableName = "runner"

type (
	repo struct {
		conn bob.Executor
	}
	runnerRow struct {
		ID           int        `db:"id"`
		RaceID       int        `db:"race_id"`
		Number       int        `db:"number"`
		Status       string     `db:"status"`
		RecordedTime *time.Time `db:"recorded_time"`
		Notes        *string    `db:"notes"`
	}
)

var columns = []any{"id", "race_id", "number", "status", "recorded_time", "notes"}

var _ api.RunnerRepository = (*repo)(nil)

func NewRunnerRepository(conn bob.Executor) api.RunnerRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(ctx context.Context, runner *model.Runner) (int, error) {
	q := psql.Insert(
		im.Into(tableName, "race_id", "number", "status", "recorded_time", "notes"),
		im.Values(values(runner)),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int])
	return id, util.TranslateErr(err)
}

// CreateBulk inserts all runners with a single statement
func (r *repo) CreateBulk(ctx context.Context, runners []*model.Runner) error {
	if len(runners) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(tableName, "race_id", "number", "status", "recorded_time", "notes"),
	}
	for _, runner := range runners {
		mods = append(mods, im.Values(values(runner)))
	}
	_, err := bob.Exec(ctx, r.getExecutor(ctx), psql.Insert(mods...))
	return util.TranslateErr(err)
}

func (r *repo) LoadByID(ctx context.Context, id int) (*model.Runner, error) {
	return r.loadOne(ctx, sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
}

func (r *repo) LoadByRaceID(ctx context.Context, raceID int) ([]*model.Runner, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
		sm.OrderBy(psql.Quote("number")).Asc(),
	)
	rows, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[runnerRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	ret := make([]*model.Runner, len(rows))
	for i := range rows {
		ret[i] = rows[i].toModel()
	}
	return ret, nil
}

func (r *repo) LoadByRaceAndNumber(ctx context.Context, raceID, number int) (
	*model.Runner, error,
) {
	return r.loadOne(ctx,
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
		sm.Where(psql.Quote("number").EQ(psql.Arg(number))),
	)
}

func (r *repo) Update(ctx context.Context, id int, setter model.RunnerSetter) (
	int, error,
) {
	if setter.IsEmpty() {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(tableName),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if v, ok := setter.Status.Get(); ok {
		mods = append(mods, um.SetCol("status").ToArg(string(v)))
	}
	if !setter.RecordedTime.IsUnset() {
		mods = append(mods, um.SetCol("recorded_time").ToArg(setter.RecordedTime.MustPtr()))
	}
	if !setter.Notes.IsUnset() {
		mods = append(mods, um.SetCol("notes").ToArg(setter.Notes.MustPtr()))
	}
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Update(mods...)))
}

func (r *repo) DeleteByRaceID(ctx context.Context, raceID int) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
	)))
}

func (r *repo) DeleteAll(ctx context.Context) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(tableName),
	)))
}

func (r *repo) Count(ctx context.Context) (int, error) {
	return util.Count(ctx, r.getExecutor(ctx), tableName)
}

func (r *repo) loadOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (
	*model.Runner, error,
) {
	q := psql.Select(append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
	}, mods...)...)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[runnerRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	return row.toModel(), nil
}

func values(runner *model.Runner) bob.Expression {
	return psql.Arg(
		runner.RaceID,
		runner.Number,
		string(runner.Status),
		runner.RecordedTime,
		runner.Notes,
	)
}

func (row *runnerRow) toModel() *model.Runner {
	return &model.Runner{
		ID:           row.ID,
		RaceID:       row.RaceID,
		Number:       row.Number,
		Status:       model.Status(row.Status),
		RecordedTime: row.RecordedTime,
		Notes:        row.Notes,
	}
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return util.Executor(ctx, r.conn)
}
