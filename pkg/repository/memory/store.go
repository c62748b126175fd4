// Package memory provides an in-process implementation of the repositories.
// Transactions work on a copy of the tables which replaces the live tables
// when the transaction function succeeds.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/mpapenbr/racetracker-store/pkg/model"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

type tables struct {
	races       map[int]model.Race
	runners     map[int]model.Runner
	checkpoints map[int]model.Checkpoint
	cpRunners   map[int]model.CheckpointRunner
	bsRunners   map[int]model.BaseStationRunner
	settings    map[string][]byte
	seq         map[string]int
}

func newTables() *tables {
	return &tables{
		races:       map[int]model.Race{},
		runners:     map[int]model.Runner{},
		checkpoints: map[int]model.Checkpoint{},
		cpRunners:   map[int]model.CheckpointRunner{},
		bsRunners:   map[int]model.BaseStationRunner{},
		settings:    map[string][]byte{},
		seq:         map[string]int{},
	}
}

// stored values are replaced, never mutated in place, so a shallow copy
// of the maps is sufficient
func (t *tables) clone() *tables {
	return &tables{
		races:       maps.Clone(t.races),
		runners:     maps.Clone(t.runners),
		checkpoints: maps.Clone(t.checkpoints),
		cpRunners:   maps.Clone(t.cpRunners),
		bsRunners:   maps.Clone(t.bsRunners),
		settings:    maps.Clone(t.settings),
		seq:         maps.Clone(t.seq),
	}
}

func (t *tables) nextID(table string) int {
	t.seq[table]++
	return t.seq[table]
}

type txContextKey struct{}

type Store struct {
	mu    sync.RWMutex
	state *tables
	clock func() time.Time

	race       *raceRepo
	runner     *runnerRepo
	checkpoint *checkpointRepo
	cpRunner   *cpRunnerRepo
	bsRunner   *bsRunnerRepo
	setting    *settingRepo
}

type Option func(*Store)

func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

var (
	_ api.Repositories       = (*Store)(nil)
	_ api.TransactionManager = (*Store)(nil)
)

func New(opts ...Option) *Store {
	s := &Store{state: newTables(), clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.race = &raceRepo{s: s}
	s.runner = &runnerRepo{s: s}
	s.checkpoint = &checkpointRepo{s: s}
	s.cpRunner = newCPRunnerRepo(s)
	s.bsRunner = newBSRunnerRepo(s)
	s.setting = &settingRepo{s: s}
	return s
}

func (s *Store) Race() api.RaceRepository                           { return s.race }
func (s *Store) Runner() api.RunnerRepository                       { return s.runner }
func (s *Store) Checkpoint() api.CheckpointRepository               { return s.checkpoint }
func (s *Store) CheckpointRunner() api.CheckpointRunnerRepository   { return s.cpRunner }
func (s *Store) BaseStationRunner() api.BaseStationRunnerRepository { return s.bsRunner }
func (s *Store) Setting() api.SettingRepository                     { return s.setting }

// RunInTx holds the write lock for the duration of fn. Nested calls join the
// outer transaction.
//
//nolint:whitespace // editor/linter issue
func (s *Store) RunInTx(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	if _, ok := ctx.Value(txContextKey{}).(*tables); ok {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(context.WithValue(ctx, txContextKey{}, work)); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) read(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t, ok := ctx.Value(txContextKey{}).(*tables); ok {
		return fn(t)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t, ok := ctx.Value(txContextKey{}).(*tables); ok {
		return fn(t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deleteWhere[K comparable, V any](m map[K]V, pred func(v V) bool) int {
	n := 0
	for k, v := range m {
		if pred(v) {
			delete(m, k)
			n++
		}
	}
	return n
}
