package service

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("pos-carniceria/service")

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return runTxOpts(ctx, db, nil, fn)
}

func runTxOpts(ctx context.Context, db *gorm.DB, opts *sql.TxOptions, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	iso := sql.LevelDefault
	if opts != nil {
		iso = opts.Isolation
	}
	ctx, span := tracer.Start(ctx, "transaction", trace.WithAttributes(
		attribute.String("tx.isolation", iso.String()),
	))
	defer span.End()

	var err error
	if opts != nil {
		err = db.WithContext(ctx).Transaction(fn, opts)
	} else {
		err = db.WithContext(ctx).Transaction(fn)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
