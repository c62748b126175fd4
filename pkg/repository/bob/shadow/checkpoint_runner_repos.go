//nolint:whitespace,dupl // can't make both editor and linter happy
package shadow

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

const cpTable = "checkpoint_runner"

type (
	cpRepo struct {
		conn bob.Executor
	}
	cpRow struct {
		ID               int        `db:"id"`
		RaceID           int        `db:"race_id"`
		CheckpointNumber int        `db:"checkpoint_number"`
		Number           int        `db:"number"`
		Status           string     `db:"status"`
		CallInTime       *time.Time `db:"call_in_time"`
		MarkOffTime      *time.Time `db:"mark_off_time"`
		Notes            *string    `db:"notes"`
	}
)

var cpInsertColumns = []string{
	"race_id", "checkpoint_number", "number", "status",
	"call_in_time", "mark_off_time", "notes",
}

var _ api.CheckpointRunnerRepository = (*cpRepo)(nil)

func NewCheckpointRunnerRepository(conn bob.Executor) api.CheckpointRunnerRepository {
	return &cpRepo{
		conn: conn,
	}
}

func (r *cpRepo) Create(ctx context.Context, row *model.CheckpointRunner) (int, error) {
	q := psql.Insert(
		im.Into(cpTable, cpInsertColumns...),
		im.Values(cpValues(row)),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int])
	return id, util.TranslateErr(err)
}

func (r *cpRepo) CreateBulk(ctx context.Context, rows []*model.CheckpointRunner) error {
	if len(rows) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{im.Into(cpTable, cpInsertColumns...)}
	for _, row := range rows {
		mods = append(mods, im.Values(cpValues(row)))
	}
	_, err := bob.Exec(ctx, r.getExecutor(ctx), psql.Insert(mods...))
	return util.TranslateErr(err)
}

func (r *cpRepo) LoadByKey(ctx context.Context, key model.ShadowKey) (
	*model.CheckpointRunner, error,
) {
	q := r.selectQuery(keyMods(key)...)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[cpRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	return row.toModel(), nil
}

func (r *cpRepo) Update(
	ctx context.Context,
	id int,
	setter model.CheckpointRunnerSetter,
) (int, error) {
	if setter.IsEmpty() {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(cpTable),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if v, ok := setter.Status.Get(); ok {
		mods = append(mods, um.SetCol("status").ToArg(string(v)))
	}
	if !setter.CallInTime.IsUnset() {
		mods = append(mods, um.SetCol("call_in_time").ToArg(setter.CallInTime.MustPtr()))
	}
	if !setter.MarkOffTime.IsUnset() {
		mods = append(mods, um.SetCol("mark_off_time").ToArg(setter.MarkOffTime.MustPtr()))
	}
	if !setter.Notes.IsUnset() {
		mods = append(mods, um.SetCol("notes").ToArg(setter.Notes.MustPtr()))
	}
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Update(mods...)))
}

func (r *cpRepo) LoadByRaceID(ctx context.Context, raceID int) (
	[]*model.CheckpointRunner, error,
) {
	return r.loadMany(ctx, sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))))
}

func (r *cpRepo) LoadByCheckpoint(ctx context.Context, raceID, checkpointNumber int) (
	[]*model.CheckpointRunner, error,
) {
	return r.loadMany(ctx,
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
		sm.Where(psql.Quote("checkpoint_number").EQ(psql.Arg(checkpointNumber))),
	)
}

func (r *cpRepo) DeleteByRaceID(ctx context.Context, raceID int) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(cpTable),
		dm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
	)))
}

func (r *cpRepo) DeleteAll(ctx context.Context) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(cpTable),
	)))
}

func (r *cpRepo) Count(ctx context.Context) (int, error) {
	return util.Count(ctx, r.getExecutor(ctx), cpTable)
}

func (r *cpRepo) selectQuery(
	mods ...bob.Mod[*dialect.SelectQuery],
) bob.BaseQuery[*dialect.SelectQuery] {
	return psql.Select(append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns("id", "race_id", "checkpoint_number", "number", "status",
			"call_in_time", "mark_off_time", "notes"),
		sm.From(cpTable),
	}, mods...)...)
}

func (r *cpRepo) loadMany(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (
	[]*model.CheckpointRunner, error,
) {
	mods = append(mods, orderMods()...)
	rows, err := bob.All(ctx, r.getExecutor(ctx), r.selectQuery(mods...),
		scan.StructMapper[cpRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	ret := make([]*model.CheckpointRunner, len(rows))
	for i := range rows {
		ret[i] = rows[i].toModel()
	}
	return ret, nil
}

func cpValues(row *model.CheckpointRunner) bob.Expression {
	return psql.Arg(
		row.RaceID,
		row.CheckpointNumber,
		row.Number,
		string(row.Status),
		row.CallInTime,
		row.MarkOffTime,
		row.Notes,
	)
}

func (row *cpRow) toModel() *model.CheckpointRunner {
	return &model.CheckpointRunner{
		ID:               row.ID,
		RaceID:           row.RaceID,
		CheckpointNumber: row.CheckpointNumber,
		Number:           row.Number,
		Status:           model.Status(row.Status),
		CallInTime:       row.CallInTime,
		MarkOffTime:      row.MarkOffTime,
		Notes:            row.Notes,
	}
}

func (r *cpRepo) getExecutor(ctx context.Context) bob.Executor {
	return util.Executor(ctx, r.conn)
}
