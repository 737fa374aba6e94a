package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Retiro is cash taken out of the drawer. Like Pedido it stays in the
// unsettled pool until a close assigns ArqueoID.
type Retiro struct {
	ID        uint            `gorm:"primaryKey"`
	EmpresaID uint            `gorm:"index:idx_retiros_pendientes,priority:1;not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Concepto  string          `gorm:"type:varchar(255);not null"`
	ArqueoID  *uint           `gorm:"index:idx_retiros_pendientes,priority:2"`
	UsuarioID *uint
	CreatedAt time.Time `gorm:"index;not null"`
}
