package repository

import (
	"context"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoRepository interface {
	// NextTicketNumberTx bumps the Empresa's counter; the row lock it takes
	// serializes ticket allocation per tenant until the tx ends.
	NextTicketNumberTx(ctx context.Context, tx *gorm.DB, empresaID uint) (int, error)
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, empresaID, id uint) (*model.Pedido, error)
	// ListByRango returns pedidos with desde <= created_at < hasta, newest first.
	ListByRango(ctx context.Context, empresaID uint, desde, hasta time.Time) ([]model.Pedido, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) NextTicketNumberTx(ctx context.Context, tx *gorm.DB, empresaID uint) (int, error) {
	var e model.Empresa
	err := conn(r.db, tx).WithContext(ctx).Model(&e).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "ultimo_ticket"}}}).
		Where("id = ?", empresaID).
		Update("ultimo_ticket", gorm.Expr("ultimo_ticket + 1")).Error
	return e.UltimoTicket, err
}

// CreateTx inserts the pedido and its items. Cliente is only referenced.
func (r *pedidoRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Cliente").Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, empresaID, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).Preload("Items").Preload("Cliente").
		Where("empresa_id = ?", empresaID).First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) ListByRango(ctx context.Context, empresaID uint, desde, hasta time.Time) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).Preload("Items").Preload("Cliente").
		Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, desde, hasta).
		Order("created_at DESC").
		Find(&pedidos).Error
	return pedidos, err
}
