//nolint:whitespace // can't make both editor and linter happy
package result

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/mpapenbr/race-strategy-sim/pkg/db/mytypes"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	bobCtx "github.com/mpapenbr/race-strategy-sim/pkg/repository/bob/context"
)

const tableName = "race_result"

var columns = []string{
	"id", "car_name", "track_name", "strategy", "weather_condition", "laps",
	"total_time", "average_lap_time", "pit_stop_count", "pit_stop_time",
	"stints", "created_at",
}

type (
	repo struct {
		conn bob.Executor
	}
	resultRow struct {
		ID               uuid.UUID          `db:"id"`
		CarName          string             `db:"car_name"`
		TrackName        string             `db:"track_name"`
		Strategy         string             `db:"strategy"`
		WeatherCondition string             `db:"weather_condition"`
		Laps             int32              `db:"laps"`
		TotalTime        decimal.Decimal    `db:"total_time"`
		AverageLapTime   decimal.Decimal    `db:"average_lap_time"`
		PitStopCount     int32              `db:"pit_stop_count"`
		PitStopTime      decimal.Decimal    `db:"pit_stop_time"`
		Stints           mytypes.StintSlice `db:"stints"`
		CreatedAt        time.Time          `db:"created_at"`
	}
	idRow struct {
		ID uuid.UUID `db:"id"`
	}
)

var _ api.ResultRepository = (*repo)(nil)

func NewResultRepository(conn bob.Executor) api.ResultRepository {
	return &repo{
		conn: conn,
	}
}

func (r *repo) Create(ctx context.Context, outcome *model.RaceOutcome) error {
	if outcome.ID == uuid.Nil {
		outcome.ID = uuid.New()
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now()
	}
	q := psql.Insert(
		im.Into(tableName, columns...),
		im.Values(args(
			outcome.ID,
			outcome.CarName,
			outcome.TrackName,
			outcome.Strategy,
			outcome.WeatherCondition,
			int32(outcome.Laps),
			decimal.NewFromFloat(outcome.TotalTime),
			decimal.NewFromFloat(outcome.AverageLapTime),
			int32(outcome.PitStopCount),
			decimal.NewFromFloat(outcome.PitStopTime),
			mytypes.StintSlice(outcome.Stints),
			outcome.CreatedAt,
		)...),
	)
	_, err := bob.Exec(ctx, r.getExecutor(ctx), q)
	return err
}

func (r *repo) LoadByID(ctx context.Context, id uuid.UUID) (
	*model.RaceOutcome, error,
) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.getExecutor(ctx), q, scan.StructMapper[resultRow]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNoRows
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r *repo) LoadAll(ctx context.Context, filter api.ResultFilter) (
	[]*model.RaceOutcome, error,
) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
		sm.OrderBy("created_at").Desc(),
	}
	if filter.Track != "" {
		mods = append(mods,
			sm.Where(psql.Quote("track_name").EQ(psql.Arg(filter.Track))))
	}
	if filter.Car != "" {
		mods = append(mods,
			sm.Where(psql.Quote("car_name").EQ(psql.Arg(filter.Car))))
	}
	if filter.Limit > 0 {
		mods = append(mods, sm.Limit(filter.Limit))
	}
	q := psql.Select(mods...)
	rows, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[resultRow]())
	if err != nil {
		return nil, err
	}
	ret := make([]*model.RaceOutcome, 0, len(rows))
	for i := range rows {
		ret = append(ret, rows[i].toModel())
	}
	return ret, nil
}

func (r *repo) DeleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	return r.deleteReturning(ctx,
		psql.Delete(
			dm.From(tableName),
			dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
			dm.Returning("id"),
		))
}

func (r *repo) DeleteAll(ctx context.Context) (int, error) {
	return r.deleteReturning(ctx,
		psql.Delete(dm.From(tableName), dm.Returning("id")))
}

func (r *repo) deleteReturning(ctx context.Context, q bob.Query) (int, error) {
	deleted, err := bob.All(ctx, r.getExecutor(ctx), q, scan.StructMapper[idRow]())
	if err != nil {
		return 0, err
	}
	return len(deleted), nil
}

func args(values ...any) []bob.Expression {
	ret := make([]bob.Expression, len(values))
	for i := range values {
		ret[i] = psql.Arg(values[i])
	}
	return ret
}

func (r *repo) getExecutor(ctx context.Context) bob.Executor {
	if executor := bobCtx.FromContext(ctx); executor != nil {
		return executor
	}
	return r.conn
}

func (row *resultRow) toModel() *model.RaceOutcome {
	return &model.RaceOutcome{
		ID:               row.ID,
		CarName:          row.CarName,
		TrackName:        row.TrackName,
		Strategy:         row.Strategy,
		WeatherCondition: row.WeatherCondition,
		Laps:             int(row.Laps),
		TotalTime:        row.TotalTime.InexactFloat64(),
		AverageLapTime:   row.AverageLapTime.InexactFloat64(),
		PitStopCount:     int(row.PitStopCount),
		PitStopTime:      row.PitStopTime.InexactFloat64(),
		Stints:           []model.StintResult(row.Stints),
		CreatedAt:        row.CreatedAt,
	}
}
