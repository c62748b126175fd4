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

const bsTable = "base_station_runner"

type (
	bsRepo struct {
		conn bob.Executor
	}
	bsRow struct {
		ID               int        `db:"id"`
		RaceID           int        `db:"race_id"`
		CheckpointNumber int        `db:"checkpoint_number"`
		Number           int        `db:"number"`
		Status           string     `db:"status"`
		CommonTime       *time.Time `db:"common_time"`
		Notes            *string    `db:"notes"`
	}
)

var bsInsertColumns = []string{
	"race_id", "checkpoint_number", "number", "status", "common_time", "notes",
}

var _ api.BaseStationRunnerRepository = (*bsRepo)(nil)

func NewBaseStationRunnerRepository(conn bob.Executor) api.BaseStationRunnerRepository {
	return &bsRepo{
		conn: conn,
	}
}

func (r *bsRepo) Create(ctx context.Context, row *model.BaseStationRunner) (int, error) {
	q := psql.Insert(
		im.Into(bsTable, bsInsertColumns...),
		im.Values(bsValues(row)),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int])
	return id, util.TranslateErr(err)
}

func (r *bsRepo) CreateBulk(ctx context.Context, rows []*model.BaseStationRunner) error {
	if len(rows) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{im.Into(bsTable, bsInsertColumns...)}
	for _, row := range rows {
		mods = append(mods, im.Values(bsValues(row)))
	}
	_, err := bob.Exec(ctx, r.getExecutor(ctx), psql.Insert(mods...))
	return util.TranslateErr(err)
}

func (r *bsRepo) LoadByKey(ctx context.Context, key model.ShadowKey) (
	*model.BaseStationRunner, error,
) {
	q := r.selectQuery(keyMods(key)...)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[bsRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	return row.toModel(), nil
}

func (r *bsRepo) Update(
	ctx context.Context,
	id int,
	setter model.BaseStationRunnerSetter,
) (int, error) {
	if setter.IsEmpty() {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(bsTable),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if v, ok := setter.Status.Get(); ok {
		mods = append(mods, um.SetCol("status").ToArg(string(v)))
	}
	if !setter.CommonTime.IsUnset() {
		mods = append(mods, um.SetCol("common_time").ToArg(setter.CommonTime.MustPtr()))
	}
	if !setter.Notes.IsUnset() {
		mods = append(mods, um.SetCol("notes").ToArg(setter.Notes.MustPtr()))
	}
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Update(mods...)))
}

func (r *bsRepo) LoadByRaceID(ctx context.Context, raceID int) (
	[]*model.BaseStationRunner, error,
) {
	return r.loadMany(ctx, sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))))
}

func (r *bsRepo) LoadByCheckpoint(ctx context.Context, raceID, checkpointNumber int) (
	[]*model.BaseStationRunner, error,
) {
	return r.loadMany(ctx,
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
		sm.Where(psql.Quote("checkpoint_number").EQ(psql.Arg(checkpointNumber))),
	)
}

func (r *bsRepo) DeleteByRaceID(ctx context.Context, raceID int) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(bsTable),
		dm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
	)))
}

func (r *bsRepo) DeleteAll(ctx context.Context) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(bsTable),
	)))
}

func (r *bsRepo) Count(ctx context.Context) (int, error) {
	return util.Count(ctx, r.getExecutor(ctx), bsTable)
}

func (r *bsRepo) selectQuery(
	mods ...bob.Mod[*dialect.SelectQuery],
) bob.BaseQuery[*dialect.SelectQuery] {
	return psql.Select(append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns("id", "race_id", "checkpoint_number", "number", "status",
			"common_time", "notes"),
		sm.From(bsTable),
	}, mods...)...)
}

func (r *bsRepo) loadMany(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (
	[]*model.BaseStationRunner, error,
) {
	mods = append(mods, orderMods()...)
	rows, err := bob.All(ctx, r.getExecutor(ctx), r.selectQuery(mods...),
		scan.StructMapper[bsRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	ret := make([]*model.BaseStationRunner, len(rows))
	for i := range rows {
		ret[i] = rows[i].toModel()
	}
	return ret, nil
}

func bsValues(row *model.BaseStationRunner) bob.Expression {
	return psql.Arg(
		row.RaceID,
		row.CheckpointNumber,
		row.Number,
		string(row.Status),
		row.CommonTime,
		row.Notes,
	)
}

func (row *bsRow) toModel() *model.BaseStationRunner {
	return &model.BaseStationRunner{
		ID:               row.ID,
		RaceID:           row.RaceID,
		CheckpointNumber: row.CheckpointNumber,
		Number:           row.Number,
		Status:           model.Status(row.Status),
		CommonTime:       row.CommonTime,
		Notes:            row.Notes,
	}
}

func (r *bsRepo) getExecutor(ctx context.Context) bob.Executor {
	return util.Executor(ctx, r.conn)
}
