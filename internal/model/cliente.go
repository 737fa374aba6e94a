package model

import "time"

// Cliente is referenced by Pedido but never owned by it.
type Cliente struct {
	ID        uint   `gorm:"primaryKey"`
	EmpresaID uint   `gorm:"index;not null"`
	Nombre    string `gorm:"type:varchar(100);not null"`
	Telefono  string `gorm:"type:varchar(20);index"`
	Direccion *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
