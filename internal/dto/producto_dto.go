package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre         string           `json:"nombre"          validate:"required,min=2,max=100"`
	Precio         decimal.Decimal  `json:"precio"          validate:"min=0"`
	Costo          decimal.Decimal  `json:"costo"           validate:"min=0"`
	Stock          *decimal.Decimal `json:"stock"`
	PrecioMayoreo  *decimal.Decimal `json:"precio_mayoreo"`
	MayoreoDesdeKg *decimal.Decimal `json:"mayoreo_desde_kg"`
	UnidadMedida   string           `json:"unidad_medida"   validate:"omitempty,oneof=kg pieza"`
	RequiereStock  *bool            `json:"requiere_stock"`
}

// ActualizarProductoRequest is a partial update. QuitarMayoreo clears both
// wholesale fields; QuitarStock stops tracking stock.
type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"          validate:"omitempty,min=2,max=100"`
	Precio         *decimal.Decimal `json:"precio"`
	Costo          *decimal.Decimal `json:"costo"`
	Stock          *decimal.Decimal `json:"stock"`
	PrecioMayoreo  *decimal.Decimal `json:"precio_mayoreo"`
	MayoreoDesdeKg *decimal.Decimal `json:"mayoreo_desde_kg"`
	QuitarMayoreo  bool             `json:"quitar_mayoreo"`
	UnidadMedida   *string          `json:"unidad_medida"   validate:"omitempty,oneof=kg pieza"`
	RequiereStock  *bool            `json:"requiere_stock"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre     string `form:"nombre"`
	Archivados bool   `form:"archivados"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID             uint             `json:"id"`
	Nombre         string           `json:"nombre"`
	Precio         decimal.Decimal  `json:"precio"`
	Costo          decimal.Decimal  `json:"costo"`
	Stock          *decimal.Decimal `json:"stock"`
	PrecioMayoreo  *decimal.Decimal `json:"precio_mayoreo"`
	MayoreoDesdeKg *decimal.Decimal `json:"mayoreo_desde_kg"`
	UnidadMedida   string           `json:"unidad_medida"`
	RequiereStock  bool             `json:"requiere_stock"`
	Activo         bool             `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
