package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Granularity accepted by date_trunc.
const (
	TruncHora = "hour"
	TruncDia  = "day"
	TruncMes  = "month"
)

// FilaAgrupada is one bucket of sales. Periodo is the local wall-clock start
// of the bucket (timestamp without time zone, read back as UTC fields).
type FilaAgrupada struct {
	Periodo    time.Time
	NumPedidos int64
	Total      decimal.Decimal
	Costo      decimal.Decimal
}

type ReporteRepository interface {
	// VentasAgrupadas buckets pedidos with desde <= created_at < hasta by
	// trunc in timezone tz. Costo is Σ cantidad × current producto.costo.
	VentasAgrupadas(ctx context.Context, empresaID uint, desde, hasta time.Time, trunc, tz string) ([]FilaAgrupada, error)
}

type reporteRepo struct {
	db      *gorm.DB
	builder sq.StatementBuilderType
}

func NewReporteRepository(db *gorm.DB) ReporteRepository {
	// gorm rewrites '?' into the driver's positional placeholders.
	return &reporteRepo{db: db, builder: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

func (r *reporteRepo) VentasAgrupadas(ctx context.Context, empresaID uint, desde, hasta time.Time, trunc, tz string) ([]FilaAgrupada, error) {
	switch trunc {
	case TruncHora, TruncDia, TruncMes:
	default:
		return nil, fmt.Errorf("reporte: granularidad %q no soportada", trunc)
	}

	costos := r.builder.
		Select("i.pedido_id", "SUM(i.cantidad * pr.costo) AS costo").
		From("pedido_items i").
		Join("productos pr ON pr.id = i.producto_id").
		GroupBy("i.pedido_id")

	query, args, err := r.builder.
		Select().
		Column(sq.Expr("date_trunc(?, p.created_at AT TIME ZONE ?) AS periodo", trunc, tz)).
		Columns(
			"COUNT(*) AS num_pedidos",
			"COALESCE(SUM(p.total), 0) AS total",
			"COALESCE(SUM(c.costo), 0) AS costo",
		).
		From("pedidos p").
		JoinClause(costos.Prefix("LEFT JOIN (").Suffix(") c ON c.pedido_id = p.id")).
		Where(sq.Eq{"p.empresa_id": empresaID}).
		Where(sq.GtOrEq{"p.created_at": desde}).
		Where(sq.Lt{"p.created_at": hasta}).
		GroupBy("1").
		OrderBy("1").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("reporte: build query: %w", err)
	}

	var filas []FilaAgrupada
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&filas).Error; err != nil {
		return nil, fmt.Errorf("reporte: ventas agrupadas: %w", err)
	}
	return filas, nil
}
