// Package race provides the operations on races, their runners and the
// per station tracking data.
package race

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racetracker-store/log"
	"github.com/mpapenbr/racetracker-store/pkg/repository/api"
)

var (
	ErrSaveRace         = errors.New("failed to save race configuration")
	ErrLoadRace         = errors.New("failed to load race data")
	ErrDeleteRace       = errors.New("failed to delete race")
	ErrRaceNotFound     = errors.New("race not found")
	ErrRunnerNotFound   = errors.New("runner not found")
	ErrUpdateRunner     = errors.New("failed to update runner")
	ErrInvalidStatus    = errors.New("invalid runner status")
	ErrCheckpointExists = errors.New("checkpoint already exists")
	ErrAddCheckpoint    = errors.New("failed to add checkpoint")
	ErrInitTracking     = errors.New("failed to initialize tracking data")
	ErrSetting          = errors.New("failed to access setting")
	ErrCleanup          = errors.New("failed to clean up database")
)

// SettingCurrentRace holds the id of the race selected by the user.
const SettingCurrentRace = "currentRaceId"

type Option func(*Service)

func WithRepositories(repos api.Repositories) Option {
	return func(s *Service) {
		s.repos = repos
	}
}

func WithTxManager(txMgr api.TransactionManager) Option {
	return func(s *Service) {
		s.txMgr = txMgr
	}
}

// WithClock replaces time.Now, used for default timestamps and cleanup cutoffs
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.log = logger
	}
}

type Service struct {
	log    *log.Logger
	repos  api.Repositories
	txMgr  api.TransactionManager
	clock  func() time.Time
	tracer trace.Tracer
}

func NewService(opts ...Option) *Service {
	ret := &Service{
		log:   log.Default().Named("service.race"),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tracer == nil {
		ret.tracer = otel.Tracer("rts")
	}
	return ret
}

// Repositories exposes the store the service works on.
func (s *Service) Repositories() api.Repositories {
	return s.repos
}

func (s *Service) Now() time.Time {
	return s.clock()
}
