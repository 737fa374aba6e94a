package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/shopspring/decimal"
)

// PrecioLinea is the unit price for a line of cantidad: the wholesale price
// once the threshold is reached (inclusive), the regular price otherwise.
func PrecioLinea(p *model.Producto, cantidad decimal.Decimal) decimal.Decimal {
	if p.AplicaMayoreo(cantidad) {
		return *p.PrecioMayoreo
	}
	return p.Precio
}

type lineaCarrito struct {
	Producto       model.Producto
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
	Mayoreo        bool
}

// lineaNoDisponible is a stored line that can no longer be sold: the
// product was archived or moved out of reach, or the quantity is malformed.
type lineaNoDisponible struct {
	ProductoID uint
	Cantidad   decimal.Decimal
	Err        error
}

// cantidadValida: positive with at most three decimals (grams).
func cantidadValida(q decimal.Decimal) bool {
	return q.IsPositive() && q.Equal(q.Round(3))
}

// calcularCarrito prices every line of c against the catalog of empresaID.
// Lines come back ordered by producto id. Subtotals are exact (no rounding);
// total is their sum. Any line that cannot be sold fails the whole cart.
func calcularCarrito(ctx context.Context, productos repository.ProductoRepository, empresaID uint, c *model.Carrito) ([]lineaCarrito, decimal.Decimal, error) {
	lineas, total, fuera, err := preciarCarrito(ctx, productos, empresaID, c)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if len(fuera) > 0 {
		return nil, decimal.Zero, fuera[0].Err
	}
	return lineas, total, nil
}

// preciarCarrito prices the sellable lines and sets the rest aside, both in
// producto id order. total covers the sellable lines only.
func preciarCarrito(ctx context.Context, productos repository.ProductoRepository, empresaID uint, c *model.Carrito) ([]lineaCarrito, decimal.Decimal, []lineaNoDisponible, error) {
	ids := make([]uint, 0, len(c.Items))
	cantidades := make(map[uint]decimal.Decimal, len(c.Items))
	for k, q := range c.Items {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			return nil, decimal.Zero, nil, fmt.Errorf("producto %q: %w", k, ErrNoEncontrado)
		}
		ids = append(ids, uint(id))
		cantidades[uint(id)] = q
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	encontrados, err := productos.FindByIDs(ctx, empresaID, ids)
	if err != nil {
		return nil, decimal.Zero, nil, err
	}
	porID := make(map[uint]model.Producto, len(encontrados))
	for _, p := range encontrados {
		if p.Activo {
			porID[p.ID] = p
		}
	}

	lineas := make([]lineaCarrito, 0, len(ids))
	var fuera []lineaNoDisponible
	total := decimal.Zero
	for _, id := range ids {
		q := cantidades[id]
		p, ok := porID[id]
		if !ok {
			fuera = append(fuera, lineaNoDisponible{ProductoID: id, Cantidad: q, Err: fmt.Errorf("producto %d: %w", id, ErrNoEncontrado)})
			continue
		}
		if !cantidadValida(q) {
			fuera = append(fuera, lineaNoDisponible{ProductoID: id, Cantidad: q, Err: fmt.Errorf("producto %d: %w", id, ErrCantidadInvalida)})
			continue
		}
		precio := PrecioLinea(&p, q)
		sub := precio.Mul(q)
		lineas = append(lineas, lineaCarrito{
			Producto:       p,
			Cantidad:       q,
			PrecioUnitario: precio,
			Subtotal:       sub,
			Mayoreo:        p.AplicaMayoreo(q),
		})
		total = total.Add(sub)
	}
	return lineas, total, fuera, nil
}

// validarStock checks the whole cart before any write.
func validarStock(lineas []lineaCarrito) error {
	for _, l := range lineas {
		if !l.Producto.RequiereStock {
			continue
		}
		if l.Producto.Stock == nil {
			return &StockInsuficienteError{
				ProductoID: l.Producto.ID,
				Producto:   l.Producto.Nombre,
				Solicitado: l.Cantidad,
				SinStock:   true,
			}
		}
		if l.Producto.Stock.LessThan(l.Cantidad) {
			return &StockInsuficienteError{
				ProductoID: l.Producto.ID,
				Producto:   l.Producto.Nombre,
				Disponible: *l.Producto.Stock,
				Solicitado: l.Cantidad,
			}
		}
	}
	return nil
}

// parseMonto accepts a non-negative amount with at most two decimals.
func parseMonto(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, ErrMontoInvalido
	}
	m, err := decimal.NewFromString(s)
	if err != nil || m.IsNegative() || !m.Equal(m.Round(2)) {
		return decimal.Zero, ErrMontoInvalido
	}
	return m, nil
}
