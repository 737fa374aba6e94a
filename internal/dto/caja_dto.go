package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RetiroRequest struct {
	Monto    decimal.Decimal `json:"monto"    validate:"gt=0"`
	Concepto string          `json:"concepto" validate:"required,min=3,max=255"`
}

type CerrarCajaRequest struct {
	MontoContado MontoEntrada `json:"monto_contado"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RetiroResponse struct {
	ID       uint            `json:"id"`
	Monto    decimal.Decimal `json:"monto"`
	Concepto string          `json:"concepto"`
	Fecha    string          `json:"fecha"`
	ArqueoID *uint           `json:"arqueo_id"`
}

type RegistrarRetiroResponse struct {
	Retiro      RetiroResponse    `json:"retiro"`
	TicketTexto string            `json:"ticket_texto"`
	Impresion   ImpresionResponse `json:"impresion"`
}

// ArqueoPreviewResponse is the live, unsettled position of the drawer.
type ArqueoPreviewResponse struct {
	Fecha            string          `json:"fecha"`
	VentasEfectivo   decimal.Decimal `json:"ventas_efectivo"`
	VentasTarjeta    decimal.Decimal `json:"ventas_tarjeta"`
	TotalVentas      decimal.Decimal `json:"total_ventas"`
	Retiros          decimal.Decimal `json:"retiros"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	NumPedidos       int             `json:"num_pedidos"`
	NumRetiros       int             `json:"num_retiros"`
	TicketTexto      string          `json:"ticket_texto"`
}

type ArqueoResponse struct {
	ID               uint            `json:"id"`
	Fecha            string          `json:"fecha"`
	VentasEfectivo   decimal.Decimal `json:"ventas_efectivo"`
	VentasTarjeta    decimal.Decimal `json:"ventas_tarjeta"`
	TotalVentas      decimal.Decimal `json:"total_ventas"`
	Retiros          decimal.Decimal `json:"retiros"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	MontoContado     decimal.Decimal `json:"monto_contado"`
	Diferencia       decimal.Decimal `json:"diferencia"`
	Clasificacion    string          `json:"clasificacion"` // exacto | sobrante | faltante
	NumPedidos       int             `json:"num_pedidos"`
	NumRetiros       int             `json:"num_retiros"`
	CerradoPor       *string         `json:"cerrado_por"`
	CreatedAt        string          `json:"created_at"`
}

type CerrarCajaResponse struct {
	Arqueo      ArqueoResponse    `json:"arqueo"`
	TicketTexto string            `json:"ticket_texto"`
	Impresion   ImpresionResponse `json:"impresion"`
}

type ArqueoListResponse struct {
	Data  []ArqueoResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
