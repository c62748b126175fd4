// Package shadow holds the postgres repositories of the per station copies
// of the runner table.
package shadow

import (
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/mpapenbr/racetracker-store/pkg/model"
)

func keyMods(key model.ShadowKey) []bob.Mod[*dialect.SelectQuery] {
	return []bob.Mod[*dialect.SelectQuery]{
		sm.Where(psql.Quote("race_id").EQ(psql.Arg(key.RaceID))),
		sm.Where(psql.Quote("checkpoint_number").EQ(psql.Arg(key.CheckpointNumber))),
		sm.Where(psql.Quote("number").EQ(psql.Arg(key.Number))),
	}
}

func orderMods() []bob.Mod[*dialect.SelectQuery] {
	return []bob.Mod[*dialect.SelectQuery]{
		sm.OrderBy(psql.Quote("checkpoint_number")).Asc(),
		sm.OrderBy(psql.Quote("number")).Asc(),
	}
}
