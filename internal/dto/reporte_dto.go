package dto

import "github.com/shopspring/decimal"

// ReporteVentasFilter takes inclusive local dates (YYYY-MM-DD). Both empty = today.
type ReporteVentasFilter struct {
	FechaInicio string `form:"fecha_inicio"`
	FechaFin    string `form:"fecha_fin"`
}

type ReporteVentasResponse struct {
	Titulo        string           `json:"titulo"`
	FechaInicio   string           `json:"fecha_inicio"`
	FechaFin      string           `json:"fecha_fin"`
	NumPedidos    int              `json:"num_pedidos"`
	TotalVendido  decimal.Decimal  `json:"total_vendido"`
	TotalEfectivo decimal.Decimal  `json:"total_efectivo"`
	TotalTarjeta  decimal.Decimal  `json:"total_tarjeta"`
	Pedidos       []PedidoResponse `json:"pedidos"`
}

// DashboardResponse is a chart series; Datos are plain numbers for charting.
type DashboardResponse struct {
	Titulo      string    `json:"titulo"`
	Periodo     string    `json:"periodo"`      // hoy | semana | mes
	TipoGrafica string    `json:"tipo_grafica"` // line | bar
	Etiquetas   []string  `json:"etiquetas"`
	Datos       []float64 `json:"datos"`
}

type ResumenFiltro struct {
	Agrupacion string `form:"agrupacion,default=dia" validate:"oneof=dia mes"`
	Periodos   int    `form:"periodos"`
}

type ResumenFila struct {
	Periodo    string          `json:"periodo"`
	NumPedidos int64           `json:"num_pedidos"`
	Total      decimal.Decimal `json:"total"`
	Costo      decimal.Decimal `json:"costo"`
	Margen     decimal.Decimal `json:"margen"`
}

type ResumenResponse struct {
	Agrupacion string          `json:"agrupacion"`
	Filas      []ResumenFila   `json:"filas"`
	NumPedidos int64           `json:"num_pedidos"`
	Total      decimal.Decimal `json:"total"`
	Costo      decimal.Decimal `json:"costo"`
	Margen     decimal.Decimal `json:"margen"`
}
