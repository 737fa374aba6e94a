package repository

import (
	"context"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, empresaID, id uint) (*model.Cliente, error)
	// List filters by name or phone when q is not empty.
	List(ctx context.Context, empresaID uint, q string) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	Delete(ctx context.Context, empresaID, id uint) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, empresaID, id uint) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, empresaID uint, q string) ([]model.Cliente, error) {
	var clientes []model.Cliente
	db := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID)
	if q != "" {
		db = db.Where("nombre ILIKE ? OR telefono LIKE ?", "%"+q+"%", q+"%")
	}
	err := db.Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete leaves past Pedidos in place; their cliente_id is nulled by the FK.
func (r *clienteRepo) Delete(ctx context.Context, empresaID, id uint) error {
	res := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).Delete(&model.Cliente{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
