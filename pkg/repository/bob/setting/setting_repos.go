package setting

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/racetracker-store/pkg/db/mytypes"
	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
	"github.com/mpapenbr/racetracker-store/pkg/repository/bob/util"
)

const tableName = "setting"

type (
	repo struct {
		conn bob.Executor
	}
	settingRow struct {
		Key   string          `db:"key"`
		Value mytypes.RawJSON `db:"value"`
	}
)

var _ api.SettingRepository = (*repo)(nil)

func NewSettingRepository(conn bob.Executor) api.SettingRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Load(ctx context.Context, key string) (*model.Setting, error) {
	q := psql.Select(
		sm.Columns("key", "value"),
		sm.From(tableName),
		sm.Where(psql.Quote("key").EQ(psql.Arg(key))),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[settingRow]())
	if err != nil {
		return nil, util.TranslateErr(err)
	}
	return &model.Setting{Key: row.Key, Value: row.Value}, nil
}

// Save inserts or replaces the value stored for key
func (r *repo) Save(ctx context.Context, key string, value []byte) error {
	q := psql.Insert(
		im.Into(tableName, "key", "value"),
		im.Values(psql.Arg(key, mytypes.RawJSON(value))),
		im.OnConflict("key").DoUpdate(im.SetExcluded("value")),
	)
	_, err := bob.Exec(ctx, r.getExecutor(ctx), q)
	return util.TranslateErr(err)
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
