package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Arqueo is a closed till. It is created once per close and never modified.
// EfectivoEsperado = VentasEfectivo - Retiros; Diferencia = MontoContado - EfectivoEsperado.
// Clasificacion: "exacto" | "sobrante" | "faltante"
type Arqueo struct {
	ID               uint            `gorm:"primaryKey"`
	EmpresaID        uint            `gorm:"index;not null"`
	Fecha            time.Time       `gorm:"type:date;not null"`
	VentasEfectivo   decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	VentasTarjeta    decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	Retiros          decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	EfectivoEsperado decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	MontoContado     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia       decimal.Decimal `gorm:"type:decimal(16,5);not null"`
	Clasificacion    string          `gorm:"type:varchar(20);not null"`
	NumPedidos       int             `gorm:"not null;default:0"`
	NumRetiros       int             `gorm:"not null;default:0"`
	CerradoPorID     *uint
	CreatedAt        time.Time

	CerradoPor *Usuario `gorm:"foreignKey:CerradoPorID;constraint:OnDelete:SET NULL"`
}
