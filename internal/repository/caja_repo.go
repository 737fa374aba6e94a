package repository

import (
	"context"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TotalesCaja is the unsettled position of one Empresa as of a cutoff.
type TotalesCaja struct {
	VentasEfectivo decimal.Decimal
	VentasTarjeta  decimal.Decimal
	Retiros        decimal.Decimal
	NumPedidos     int
	NumRetiros     int
}

// CajaRepository holds withdrawals and closed tills, and the two queries the
// close runs inside one transaction: the aggregate and the settlement.
//
// A row is "pending" when arqueo_id IS NULL and created_at <= corte. Both
// TotalesPendientes and LiquidarTx use that same predicate, so a sale that
// lands after the cutoff stays pending for the next close.
type CajaRepository interface {
	CreateRetiro(ctx context.Context, r *model.Retiro) error
	FindRetiro(ctx context.Context, empresaID, id uint) (*model.Retiro, error)
	ListRetirosPendientes(ctx context.Context, empresaID uint) ([]model.Retiro, error)

	TotalesPendientes(ctx context.Context, tx *gorm.DB, empresaID uint, corte time.Time) (TotalesCaja, error)
	CreateArqueoTx(ctx context.Context, tx *gorm.DB, a *model.Arqueo) error
	// LiquidarTx attaches every pending Pedido and Retiro to arqueoID and
	// returns how many of each were attached.
	LiquidarTx(ctx context.Context, tx *gorm.DB, empresaID, arqueoID uint, corte time.Time) (int64, int64, error)

	FindArqueo(ctx context.Context, empresaID, id uint) (*model.Arqueo, error)
	ListArqueos(ctx context.Context, empresaID uint, page, limit int) ([]model.Arqueo, int64, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateRetiro(ctx context.Context, ret *model.Retiro) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *cajaRepo) FindRetiro(ctx context.Context, empresaID, id uint) (*model.Retiro, error) {
	var ret model.Retiro
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&ret, id).Error
	return &ret, err
}

func (r *cajaRepo) ListRetirosPendientes(ctx context.Context, empresaID uint) ([]model.Retiro, error) {
	var retiros []model.Retiro
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND arqueo_id IS NULL", empresaID).
		Order("created_at DESC").
		Find(&retiros).Error
	return retiros, err
}

type sumaPorMetodo struct {
	MetodoPago string
	Total      decimal.Decimal
	N          int
}

func (r *cajaRepo) TotalesPendientes(ctx context.Context, tx *gorm.DB, empresaID uint, corte time.Time) (TotalesCaja, error) {
	db := conn(r.db, tx).WithContext(ctx)
	tot := TotalesCaja{}

	var ventas []sumaPorMetodo
	err := db.Model(&model.Pedido{}).
		Select("metodo_pago, COALESCE(SUM(total), 0) AS total, COUNT(*) AS n").
		Where("empresa_id = ? AND arqueo_id IS NULL AND created_at <= ?", empresaID, corte).
		Group("metodo_pago").
		Scan(&ventas).Error
	if err != nil {
		return tot, err
	}
	for _, v := range ventas {
		switch v.MetodoPago {
		case model.MetodoEfectivo:
			tot.VentasEfectivo = v.Total
		case model.MetodoTarjeta:
			tot.VentasTarjeta = v.Total
		}
		tot.NumPedidos += v.N
	}

	var retiros struct {
		Total decimal.Decimal
		N     int
	}
	err = db.Model(&model.Retiro{}).
		Select("COALESCE(SUM(monto), 0) AS total, COUNT(*) AS n").
		Where("empresa_id = ? AND arqueo_id IS NULL AND created_at <= ?", empresaID, corte).
		Scan(&retiros).Error
	if err != nil {
		return tot, err
	}
	tot.Retiros = retiros.Total
	tot.NumRetiros = retiros.N
	return tot, nil
}

func (r *cajaRepo) CreateArqueoTx(ctx context.Context, tx *gorm.DB, a *model.Arqueo) error {
	return conn(r.db, tx).WithContext(ctx).Create(a).Error
}

func (r *cajaRepo) LiquidarTx(ctx context.Context, tx *gorm.DB, empresaID, arqueoID uint, corte time.Time) (int64, int64, error) {
	db := conn(r.db, tx).WithContext(ctx)
	pedidos := db.Model(&model.Pedido{}).
		Where("empresa_id = ? AND arqueo_id IS NULL AND created_at <= ?", empresaID, corte).
		Update("arqueo_id", arqueoID)
	if pedidos.Error != nil {
		return 0, 0, pedidos.Error
	}
	retiros := db.Model(&model.Retiro{}).
		Where("empresa_id = ? AND arqueo_id IS NULL AND created_at <= ?", empresaID, corte).
		Update("arqueo_id", arqueoID)
	if retiros.Error != nil {
		return 0, 0, retiros.Error
	}
	return pedidos.RowsAffected, retiros.RowsAffected, nil
}

func (r *cajaRepo) FindArqueo(ctx context.Context, empresaID, id uint) (*model.Arqueo, error) {
	var a model.Arqueo
	err := r.db.WithContext(ctx).Preload("CerradoPor").Where("empresa_id = ?", empresaID).First(&a, id).Error
	return &a, err
}

func (r *cajaRepo) ListArqueos(ctx context.Context, empresaID uint, page, limit int) ([]model.Arqueo, int64, error) {
	var arqueos []model.Arqueo
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Arqueo{}).Where("empresa_id = ?", empresaID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("CerradoPor").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&arqueos).Error
	return arqueos, total, err
}
