package model

import "time"

// Empresa is the tenant root. Every other record hangs from exactly one Empresa.
// UltimoTicket is the per-tenant receipt counter, bumped inside the checkout tx.
type Empresa struct {
	ID           uint   `gorm:"primaryKey"`
	Nombre       string `gorm:"type:varchar(100);uniqueIndex;not null"`
	UltimoTicket int    `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (Empresa) TableName() string { return "empresas" }
