package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	UnidadKg    = "kg"
	UnidadPieza = "pieza"
)

// Producto is a catalog entry of one Empresa. Stock is nil for products that
// are not tracked; a tracked product with nil stock cannot be sold.
type Producto struct {
	ID             uint             `gorm:"primaryKey"`
	EmpresaID      uint             `gorm:"index:idx_productos_empresa_activo;not null"`
	Nombre         string           `gorm:"type:varchar(100);index;not null"`
	Precio         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Costo          decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Stock          *decimal.Decimal `gorm:"type:decimal(12,3)"`
	PrecioMayoreo  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MayoreoDesdeKg *decimal.Decimal `gorm:"type:decimal(10,3)"`
	UnidadMedida   string           `gorm:"type:varchar(10);not null;default:'kg'"`
	RequiereStock  bool             `gorm:"not null;default:true"`
	Activo         bool             `gorm:"index:idx_productos_empresa_activo;not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AplicaMayoreo reports whether cantidad reaches the wholesale threshold.
// The threshold is inclusive and both wholesale fields must be set.
func (p *Producto) AplicaMayoreo(cantidad decimal.Decimal) bool {
	if p.PrecioMayoreo == nil || p.MayoreoDesdeKg == nil {
		return false
	}
	return cantidad.GreaterThanOrEqual(*p.MayoreoDesdeKg)
}
