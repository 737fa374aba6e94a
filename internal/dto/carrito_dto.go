package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AgregarItemRequest adds Cantidad (default 1) to the product's line.
type AgregarItemRequest struct {
	ProductoID uint             `json:"producto_id" validate:"required"`
	Cantidad   *decimal.Decimal `json:"cantidad"`
}

// ActualizarCantidadRequest: Modo "replace" (default) sets the line, "add" sums into it.
type ActualizarCantidadRequest struct {
	Cantidad decimal.Decimal `json:"cantidad"`
	Modo     string          `json:"modo" validate:"omitempty,oneof=replace add"`
}

type SeleccionarClienteRequest struct {
	ClienteID *uint `json:"cliente_id"`
}

type TipoVentaRequest struct {
	TipoVenta string `json:"tipo_venta" validate:"required,oneof=mostrador domicilio"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CarritoLineaResponse struct {
	ProductoID     uint            `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	UnidadMedida   string          `json:"unidad_medida"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Mayoreo        bool            `json:"mayoreo"`
}

// Motivos of a line that checkout would refuse.
const (
	MotivoProductoNoDisponible = "producto_no_disponible"
	MotivoCantidadInvalida     = "cantidad_invalida"
)

// CarritoNoDisponibleResponse is a stored line left out of Total.
type CarritoNoDisponibleResponse struct {
	ProductoID uint            `json:"producto_id"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	Motivo     string          `json:"motivo"`
}

type CarritoResponse struct {
	Items         []CarritoLineaResponse        `json:"items"`
	NoDisponibles []CarritoNoDisponibleResponse `json:"no_disponibles"`
	Total         decimal.Decimal               `json:"total"`
	Cliente       *ClienteResponse              `json:"cliente"`
	TipoVenta     string                        `json:"tipo_venta"`
}
