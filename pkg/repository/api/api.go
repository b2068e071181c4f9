package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

var ErrNoRows = errors.New("no rows in result set")

type Repositories interface {
	Result() ResultRepository
	Setup() SetupRepository
}

// ResultFilter restricts LoadAll. Zero values mean no restriction.
type ResultFilter struct {
	Track string
	Car   string
	Limit int
}

type ResultRepository interface {
	Create(ctx context.Context, outcome *model.RaceOutcome) error
	LoadByID(ctx context.Context, id uuid.UUID) (*model.RaceOutcome, error)
	// LoadAll returns the matching results, newest first
	LoadAll(ctx context.Context, filter ResultFilter) ([]*model.RaceOutcome, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

// CarSetup is a named car configuration kept between sessions.
type CarSetup struct {
	ID   string
	Name string
	Car  model.Car
}

type SetupRepository interface {
	Create(ctx context.Context, name string, car *model.Car) (*CarSetup, error)
	LoadByName(ctx context.Context, name string) (*CarSetup, error)
	LoadAll(ctx context.Context) ([]*CarSetup, error)
	DeleteByName(ctx context.Context, name string) (int, error)
}

type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
