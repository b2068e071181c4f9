package bob

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/bob/result"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/bob/setup"
)

type bobRepositories struct {
	resultRepository api.ResultRepository
	setupRepository  api.SetupRepository
}

var _ api.Repositories = (*bobRepositories)(nil)

func NewRepositoriesFromPool(pool *pgxpool.Pool) api.Repositories {
	return NewRepositories(bob.NewDB(stdlib.OpenDBFromPool(pool)))
}

func NewRepositories(db bob.DB) api.Repositories {
	return &bobRepositories{
		resultRepository: result.NewResultRepository(db),
		setupRepository:  setup.NewSetupRepository(db),
	}
}

func (r *bobRepositories) Result() api.ResultRepository {
	return r.resultRepository
}

func (r *bobRepositories) Setup() api.SetupRepository {
	return r.setupRepository
}
