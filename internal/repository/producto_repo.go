package repository

import (
	"context"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Every lookup is scoped by empresa_id; a product of another Empresa is
// indistinguishable from a missing one.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, empresaID, id uint) (*model.Producto, error)
	FindByIDs(ctx context.Context, empresaID uint, ids []uint) ([]model.Producto, error)
	List(ctx context.Context, empresaID uint, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	// Update writes only the given columns of one product of empresaID.
	Update(ctx context.Context, empresaID, id uint, campos map[string]any) error
	SetActivo(ctx context.Context, empresaID, id uint, activo bool) error
	Delete(ctx context.Context, empresaID, id uint) error

	// Used inside transactions; callers must pass the tx instance
	LockByIDsTx(ctx context.Context, tx *gorm.DB, empresaID uint, ids []uint) ([]model.Producto, error)
	// DescontarStockTx returns false when the row no longer has enough stock.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, empresaID, id uint, cantidad decimal.Decimal) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, empresaID, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDs(ctx context.Context, empresaID uint, ids []uint) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := r.db.WithContext(ctx).Where("empresa_id = ? AND id IN ?", empresaID, ids).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, empresaID uint, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("empresa_id = ? AND activo = ?", empresaID, !filter.Archivados)
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, empresaID, id uint, campos map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).Updates(campos)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) SetActivo(ctx context.Context, empresaID, id uint, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete fails with a foreign key violation when any PedidoItem references the product.
func (r *productoRepo) Delete(ctx context.Context, empresaID, id uint) error {
	res := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Delete(&model.Producto{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockByIDsTx takes row locks in id order so concurrent checkouts of
// overlapping carts cannot deadlock on each other.
func (r *productoRepo) LockByIDsTx(ctx context.Context, tx *gorm.DB, empresaID uint, ids []uint) ([]model.Producto, error) {
	var productos []model.Producto
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("empresa_id = ? AND id IN ?", empresaID, ids).
		Order("id ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) DescontarStockTx(ctx context.Context, tx *gorm.DB, empresaID, id uint, cantidad decimal.Decimal) (bool, error) {
	res := conn(r.db, tx).WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ? AND stock IS NOT NULL AND stock >= ?", id, empresaID, cantidad).
		Update("stock", gorm.Expr("stock - ?", cantidad))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
