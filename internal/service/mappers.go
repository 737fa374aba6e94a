package service

import (
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/shopspring/decimal"
)

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:             p.ID,
		Nombre:         p.Nombre,
		Precio:         p.Precio,
		Costo:          p.Costo,
		Stock:          p.Stock,
		PrecioMayoreo:  p.PrecioMayoreo,
		MayoreoDesdeKg: p.MayoreoDesdeKg,
		UnidadMedida:   p.UnidadMedida,
		RequiereStock:  p.RequiereStock,
		Activo:         p.Activo,
	}
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	if c == nil {
		return nil
	}
	return &dto.ClienteResponse{ID: c.ID, Nombre: c.Nombre, Telefono: c.Telefono, Direccion: c.Direccion}
}

func pedidoToResponse(p *model.Pedido, loc *time.Location) dto.PedidoResponse {
	items := make([]dto.PedidoItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.PedidoItemResponse{
			ProductoID:     it.ProductoID,
			Producto:       it.Nombre,
			UnidadMedida:   it.UnidadMedida,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
			Mayoreo:        it.Mayoreo,
		})
	}
	return dto.PedidoResponse{
		ID:              p.ID,
		NumeroTicket:    p.NumeroTicket,
		Fecha:           p.CreatedAt.In(loc).Format(time.RFC3339),
		TipoVenta:       p.TipoVenta,
		Cliente:         clienteToResponse(p.Cliente),
		Items:           items,
		Total:           p.Total,
		MetodoPago:      p.MetodoPago,
		MontoRecibido:   p.MontoRecibido,
		CambioEntregado: p.CambioEntregado,
		ArqueoID:        p.ArqueoID,
	}
}

func retiroToResponse(r *model.Retiro, loc *time.Location) dto.RetiroResponse {
	return dto.RetiroResponse{
		ID:       r.ID,
		Monto:    r.Monto,
		Concepto: r.Concepto,
		Fecha:    r.CreatedAt.In(loc).Format(time.RFC3339),
		ArqueoID: r.ArqueoID,
	}
}

func arqueoToResponse(a *model.Arqueo, loc *time.Location) dto.ArqueoResponse {
	var cerradoPor *string
	if a.CerradoPor != nil {
		cerradoPor = &a.CerradoPor.Username
	}
	return dto.ArqueoResponse{
		ID:               a.ID,
		Fecha:            a.Fecha.Format(time.DateOnly),
		VentasEfectivo:   a.VentasEfectivo,
		VentasTarjeta:    a.VentasTarjeta,
		TotalVentas:      a.VentasEfectivo.Add(a.VentasTarjeta),
		Retiros:          a.Retiros,
		EfectivoEsperado: a.EfectivoEsperado,
		MontoContado:     a.MontoContado,
		Diferencia:       a.Diferencia,
		Clasificacion:    a.Clasificacion,
		NumPedidos:       a.NumPedidos,
		NumRetiros:       a.NumRetiros,
		CerradoPor:       cerradoPor,
		CreatedAt:        a.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

func dptr(d decimal.Decimal) *decimal.Decimal { return &d }
