package checkpoint

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/util"
)

const tableName = "checkpoint"

type (
	repo struct {
		conn bob.Executor
	}
	checkpointRow struct {
		ID     int    `db:"id"`
		RaceID int    `db:"race_id"`
		Number int    `db:"number"`
		Name   string `db:"name"`
	}
)

var _ api.CheckpointRepository = (*repo)(nil)

func NewCheckpointRepository(conn bob.Executor) api.CheckpointRepository {
	return &repo{
		conn: conn,
	}
}

//nolint:whitespace // editor/linter issue
func (r *repo) Create(ctx context.Context, cp *model.Checkpoint) (int, error) {
	q := psql.Insert(
		im.Into(tableName, "race_id", "number", "name"),
		im.Values(psql.Arg(cp.RaceID, cp.Number, cp.Name)),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int])
	return id, util.TranslateErr(err)
}

func (r *repo) CreateBulk(ctx context.Context, cps []*model.Checkpoint) error {
	if len(cps) == 0 {
		return nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(tableName, "race_id", "number", "name"),
	}
	for _, cp := range cps {
		mods = append(mods, im.Values(psql.Arg(cp.RaceID, cp.Number, cp.Name)))
	}
	_, err := bob.Exec(ctx, r.getExecutor(ctx), psql.Insert(mods...))
	return util.TranslateErr(err)
}

//nolint:whitespace // editor/linter issue
func (r *repo) LoadByRaceID(ctx context.Context, raceID int) (
	[]*model.Checkpoint, error,
) {
	q := psql.Select(
		sm.Columns("id", "race_id", "number", "name"),
		sm.From(tableName),
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(raceID))),
		sm.OrderBy(psql.Quote("number")).Asc(),
	)
	rows, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[checkpointRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	ret := make([]*model.Checkpoint, len(rows))
	for i, row := range rows {
		ret[i] = &model.Checkpoint{
			ID:     row.ID,
			RaceID: row.RaceID,
			Number: row.Number,
			Name:   row.Name,
		}
	}
	return ret, nil
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

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return util.Executor(ctx, r.conn)
}
