//nolint:whitespace // can't make both editor and linter happy
package setup

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/race-strategy-sim/pkg/db/mytypes"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	bobCtx "github.com/mpapenbr/race-strategy-sim/pkg/repository/bob/context"
)

const tableName = "car_setup"

type (
	repo struct {
		conn bob.Executor
	}
	setupRow struct {
		ID         string                `db:"id"`
		Name       string                `db:"name"`
		Definition mytypes.CarDefinition `db:"definition"`
		CreatedAt  time.Time             `db:"created_at"`
	}
	nameRow struct {
		Name string `db:"name"`
	}
)

var _ api.SetupRepository = (*repo)(nil)

func NewSetupRepository(conn bob.Executor) api.SetupRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(ctx context.Context, name string, car *model.Car) (
	*api.CarSetup, error,
) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	q := psql.Insert(
		im.Into(tableName, "id", "name", "definition"),
		im.Values(
			psql.Arg(id.String()),
			psql.Arg(name),
			psql.Arg(mytypes.CarDefinition(*car)),
		),
	)
	if _, err := bob.Exec(ctx, r.getExecutor(ctx), q); err != nil {
		return nil, err
	}
	return &api.CarSetup{ID: id.String(), Name: name, Car: *car}, nil
}

func (r *repo) LoadByName(ctx context.Context, name string) (
	*api.CarSetup, error,
) {
	q := psql.Select(
		sm.Columns("id", "name", "definition", "created_at"),
		sm.From(tableName),
		sm.Where(psql.Quote("name").EQ(psql.Arg(name))),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[setupRow]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNoRows
		}
		return nil, err
	}
	return row.toAPI(), nil
}

func (r *repo) LoadAll(ctx context.Context) ([]*api.CarSetup, error) {
	q := psql.Select(
		sm.Columns("id", "name", "definition", "created_at"),
		sm.From(tableName),
		sm.OrderBy("name").Asc(),
	)
	rows, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[setupRow]())
	if err != nil {
		return nil, err
	}
	ret := make([]*api.CarSetup, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].toAPI())
	}
	return ret, nil
}

func (r *repo) DeleteByName(ctx context.Context, name string) (int, error) {
	q := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("name").EQ(psql.Arg(name))),
		dm.Returning("name"),
	)
	deleted, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[nameRow]())
	if err != nil {
		return 0, err
	}
	return len(deleted), nil
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return r.conn
}

func (row *setupRow) toAPI() *api.CarSetup {
	return &api.CarSetup{
		ID:   row.ID,
		Name: row.Name,
		Car:  model.Car(row.Definition),
	}
}
