package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// FinalizarVentaRequest checks out the current cart. MontoRecibido is
// required for efectivo and ignored for tarjeta.
type FinalizarVentaRequest struct {
	MetodoPago    string        `json:"metodo_pago"    validate:"required,oneof=efectivo tarjeta"`
	MontoRecibido *MontoEntrada `json:"monto_recibido"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ImpresionResponse reports the best-effort print attempt. A failed print
// never undoes the operation that produced the ticket.
type ImpresionResponse struct {
	Impreso  bool    `json:"impreso"`
	Encolado bool    `json:"encolado"`
	Aviso    *string `json:"aviso"`
}

type PedidoItemResponse struct {
	ProductoID     uint            `json:"producto_id"`
	Producto       string          `json:"producto"`
	UnidadMedida   string          `json:"unidad_medida"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Mayoreo        bool            `json:"mayoreo"`
}

type PedidoResponse struct {
	ID              uint                 `json:"id"`
	NumeroTicket    int                  `json:"numero_ticket"`
	Fecha           string               `json:"fecha"`
	TipoVenta       string               `json:"tipo_venta"`
	Cliente         *ClienteResponse     `json:"cliente"`
	Items           []PedidoItemResponse `json:"items"`
	Total           decimal.Decimal      `json:"total"`
	MetodoPago      string               `json:"metodo_pago"`
	MontoRecibido   *decimal.Decimal     `json:"monto_recibido"`
	CambioEntregado *decimal.Decimal     `json:"cambio_entregado"`
	ArqueoID        *uint                `json:"arqueo_id"`
}

type VentaResponse struct {
	Pedido      PedidoResponse    `json:"pedido"`
	TicketTexto string            `json:"ticket_texto"`
	Impresion   ImpresionResponse `json:"impresion"`
}

type ReimpresionResponse struct {
	TicketTexto string            `json:"ticket_texto"`
	Impresion   ImpresionResponse `json:"impresion"`
}
