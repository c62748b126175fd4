//nolint:whitespace // can't make both editor and linter happy
package race

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racetracker-store/pkg/db/mytypes"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/util"
)

const tableName = "race"

type (
	repo struct {
		conn bob.Executor
	}
	raceRow struct {
		ID           int                         `db:"id"`
		Name         string                      `db:"name"`
		RaceDate     string                      `db:"race_date"`
		StartTime    string                      `db:"start_time"`
		MinRunner    int                         `db:"min_runner"`
		MaxRunner    int                         `db:"max_runner"`
		RunnerRanges mytypes.RunnerRangeSlice    `db:"runner_ranges"`
		Checkpoints  mytypes.CheckpointInfoSlice `db:"checkpoints"`
		Metadata     mytypes.Metadata            `db:"metadata"`
		CreatedAt    time.Time                   `db:"created_at"`
	}
)

var columns = []any{
	"id", "name", "race_date", "start_time", "min_runner", "max_runner",
	"runner_ranges", "checkpoints", "metadata", "created_at",
}

var _ api.RaceRepository = (*repo)(nil)

func NewRaceRepository(conn bob.Executor) api.RaceRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(ctx context.Context, race *model.Race) (int, error) {
	created := race.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	q := psql.Insert(
		im.Into(tableName,
			"name", "race_date", "start_time", "min_runner", "max_runner",
			"runner_ranges", "checkpoints", "metadata", "created_at"),
		im.Values(psql.Arg(
			race.Name,
			race.Date,
			race.StartTime,
			race.MinRunner,
			race.MaxRunner,
			mytypes.RunnerRangeSlice(race.RunnerRanges),
			mytypes.CheckpointInfoSlice(race.Checkpoints),
			mytypes.Metadata(race.Metadata),
			created,
		)),
		im.Returning("id"),
	)
	id, err := bob.One(ctx, r.getExecutor(ctx), q, scan.SingleColumnMapper[int])
	return id, util.TranslateErr(err)
}

func (r *repo) LoadByID(ctx context.Context, id int) (*model.Race, error) {
	return r.loadOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))))
}

func (r *repo) LoadAll(ctx context.Context) ([]*model.Race, error) {
	return r.loadMany(ctx)
}

func (r *repo) LoadByNameAndDate(ctx context.Context, name, date string) (
	*model.Race, error,
) {
	return r.loadOne(ctx,
		sm.Where(psql.Quote("name").EQ(psql.Arg(name))),
		sm.Where(psql.Quote("race_date").EQ(psql.Arg(date))),
		sm.OrderBy(psql.Quote("id")).Asc(),
		sm.Limit(1),
	)
}

func (r *repo) LoadCreatedBefore(ctx context.Context, cutoff time.Time) (
	[]*model.Race, error,
) {
	return r.loadMany(ctx,
		sm.Where(psql.Quote("created_at").LT(psql.Arg(cutoff))))
}

func (r *repo) LoadLatest(ctx context.Context) (*model.Race, error) {
	return r.loadOne(ctx,
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
		sm.Limit(1),
	)
}

// deletes an entry from the database, returns number of rows deleted.
func (r *repo) DeleteByID(ctx context.Context, id int) (int, error) {
	return util.Affected(bob.Exec(ctx, r.getExecutor(ctx), psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
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

func (r *repo) selectQuery(
	mods ...bob.Mod[*dialect.SelectQuery],
) bob.BaseQuery[*dialect.SelectQuery] {
	return psql.Select(append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
	}, mods...)...)
}

func (r *repo) loadOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (
	*model.Race, error,
) {
	row, err := bob.One(ctx, r.getExecutor(ctx), r.selectQuery(mods...),
		scan.StructMapper[raceRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	return row.toModel(), nil
}

func (r *repo) loadMany(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (
	[]*model.Race, error,
) {
	mods = append(mods,
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc())
	rows, err := bob.All(ctx, r.getExecutor(ctx), r.selectQuery(mods...),
		scan.StructMapper[raceRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	ret := make([]*model.Race, len(rows))
	for i := range rows {
		ret[i] = rows[i].toModel()
	}
	return ret, nil
}

func (row *raceRow) toModel() *model.Race {
	return &model.Race{
		ID: row.ID,
		RaceConfig: model.RaceConfig{
			Name:         row.Name,
			Date:         row.RaceDate,
			StartTime:    row.StartTime,
			MinRunner:    row.MinRunner,
			MaxRunner:    row.MaxRunner,
			RunnerRanges: row.RunnerRanges,
			Checkpoints:  row.Checkpoints,
		},
		Metadata:  row.Metadata,
		CreatedAt: row.CreatedAt,
	}
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	return util.Executor(ctx, r.conn)
}
