package postgres

import (
	"context"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/race-strategy-sim/log"
)

type myQueryTracer struct {
	log   *log.Logger
	level log.Level
}

// NewMyTracer logs each statement with its arguments on level.
func NewMyTracer(l *log.Logger, level log.Level) pgx.QueryTracer {
	return &myQueryTracer{log: l.Named("sql"), level: level}
}

// NewOtlpTracer creates spans for each statement.
func NewOtlpTracer() pgx.QueryTracer {
	return otelpgx.NewTracer()
}

//nolint:whitespace // can't make the linters happy
func (tracer *myQueryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	if tracer.log.Level() <= tracer.level {
		tracer.log.Debug("Executing",
			log.String("sql", data.SQL),
			log.Any("args", data.Args))
	}
	return ctx
}

//nolint:whitespace // can't make the linters happy
func (tracer *myQueryTracer) TraceQueryEnd(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	if data.Err != nil {
		tracer.log.Warn("query failed", log.ErrorField(data.Err))
	}
}
