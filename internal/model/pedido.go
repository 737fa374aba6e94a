package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MetodoEfectivo = "efectivo"
	MetodoTarjeta  = "tarjeta"

	TipoMostrador = "mostrador"
	TipoDomicilio = "domicilio"
)

// Pedido is a committed sale. It is written once together with its items and
// afterwards only ArqueoID changes, when a till close settles it.
//
// Monetary columns that derive from kg quantities keep five decimals so that
// Total equals the exact sum of cantidad*precio_unitario of its items.
type Pedido struct {
	ID              uint             `gorm:"primaryKey"`
	EmpresaID       uint             `gorm:"index:idx_pedidos_pendientes,priority:1;not null"`
	NumeroTicket    int              `gorm:"not null"`
	ClienteID       *uint            `gorm:"index"`
	TipoVenta       string           `gorm:"type:varchar(20);not null;default:'mostrador'"`
	Total           decimal.Decimal  `gorm:"type:decimal(16,5);not null"`
	MetodoPago      string           `gorm:"type:varchar(10);not null"`
	MontoRecibido   *decimal.Decimal `gorm:"type:decimal(16,5)"`
	CambioEntregado *decimal.Decimal `gorm:"type:decimal(16,5)"`
	ArqueoID        *uint            `gorm:"index:idx_pedidos_pendientes,priority:2"`
	UsuarioID       *uint
	CreatedAt       time.Time `gorm:"index;not null"`

	Cliente *Cliente     `gorm:"foreignKey:ClienteID;constraint:OnDelete:SET NULL"`
	Items   []PedidoItem `gorm:"foreignKey:PedidoID;constraint:OnDelete:CASCADE"`
}

// PedidoItem snapshots the unit price at the moment of sale. Producto is
// protected: a product that appears in any item cannot be deleted.
type PedidoItem struct {
	ID             uint            `gorm:"primaryKey"`
	PedidoID       uint            `gorm:"index;not null"`
	ProductoID     uint            `gorm:"index;not null"`
	Nombre         string          `gorm:"type:varchar(100);not null"`
	UnidadMedida   string          `gorm:"type:varchar(10);not null"`
	Cantidad       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	Mayoreo        bool            `gorm:"not null;default:false"`

	Producto *Producto `gorm:"foreignKey:ProductoID;constraint:OnDelete:RESTRICT"`
}
