package model

import "github.com/shopspring/decimal"

// Carrito is the per-session cart. It lives in Redis, never in Postgres.
// Items maps producto_id (as string, JSON object key) to quantity.
type Carrito struct {
	Items     map[string]decimal.Decimal `json:"items"`
	ClienteID *uint                      `json:"cliente_id,omitempty"`
	TipoVenta string                     `json:"tipo_venta,omitempty"`
}

func NuevoCarrito() *Carrito {
	return &Carrito{Items: make(map[string]decimal.Decimal), TipoVenta: TipoMostrador}
}

func (c *Carrito) Vacio() bool { return len(c.Items) == 0 }
