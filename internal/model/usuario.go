package model

import "time"

// Usuario stores system users scoped to one Empresa.
// Rol: "administrador" | "cajero"
type Usuario struct {
	ID           uint   `gorm:"primaryKey"`
	EmpresaID    uint   `gorm:"index;not null"`
	Username     string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Nombre       string `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Empresa *Empresa `gorm:"foreignKey:EmpresaID;constraint:OnDelete:CASCADE"`
}
