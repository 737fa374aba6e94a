package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/shopspring/decimal"
)

// CarritoService edits the session cart. Each call reads the stored cart,
// applies one change and overwrites it; the last write of a session wins.
type CarritoService interface {
	Ver(ctx context.Context, ses Sesion) (*dto.CarritoResponse, error)
	Agregar(ctx context.Context, ses Sesion, req dto.AgregarItemRequest) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, ses Sesion, productoID uint) (*dto.CarritoResponse, error)
	ActualizarCantidad(ctx context.Context, ses Sesion, productoID uint, req dto.ActualizarCantidadRequest) (*dto.CarritoResponse, error)
	SeleccionarCliente(ctx context.Context, ses Sesion, clienteID *uint) (*dto.CarritoResponse, error)
	TipoVenta(ctx context.Context, ses Sesion, tipo string) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, ses Sesion) error
}

type carritoService struct {
	store     repository.CarritoRepository
	productos repository.ProductoRepository
	clientes  repository.ClienteRepository
}

func NewCarritoService(store repository.CarritoRepository, productos repository.ProductoRepository, clientes repository.ClienteRepository) CarritoService {
	return &carritoService{store: store, productos: productos, clientes: clientes}
}

func (s *carritoService) Ver(ctx context.Context, ses Sesion) (*dto.CarritoResponse, error) {
	c, err := s.store.Get(ctx, ses.carritoKey())
	if err != nil {
		return nil, err
	}
	return s.render(ctx, ses, c)
}

func (s *carritoService) Agregar(ctx context.Context, ses Sesion, req dto.AgregarItemRequest) (*dto.CarritoResponse, error) {
	delta := decimal.NewFromInt(1)
	if req.Cantidad != nil {
		delta = *req.Cantidad
	}
	if !cantidadValida(delta) {
		return nil, ErrCantidadInvalida
	}
	if err := s.productoVendible(ctx, ses.EmpresaID, req.ProductoID); err != nil {
		return nil, err
	}
	return s.mutar(ctx, ses, func(c *model.Carrito) error {
		k := itemKey(req.ProductoID)
		c.Items[k] = c.Items[k].Add(delta)
		return nil
	})
}

func (s *carritoService) Quitar(ctx context.Context, ses Sesion, productoID uint) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, ses, func(c *model.Carrito) error {
		delete(c.Items, itemKey(productoID))
		return nil
	})
}

// ActualizarCantidad sets (replace) or sums into (add) a line. A resulting
// quantity <= 0 removes the line.
func (s *carritoService) ActualizarCantidad(ctx context.Context, ses Sesion, productoID uint, req dto.ActualizarCantidadRequest) (*dto.CarritoResponse, error) {
	if !req.Cantidad.Equal(req.Cantidad.Round(3)) {
		return nil, ErrCantidadInvalida
	}
	return s.mutar(ctx, ses, func(c *model.Carrito) error {
		k := itemKey(productoID)
		q := req.Cantidad
		if req.Modo == "add" {
			q = c.Items[k].Add(req.Cantidad)
		}
		if !q.IsPositive() {
			delete(c.Items, k)
			return nil
		}
		if err := s.productoVendible(ctx, ses.EmpresaID, productoID); err != nil {
			return err
		}
		c.Items[k] = q
		return nil
	})
}

func (s *carritoService) SeleccionarCliente(ctx context.Context, ses Sesion, clienteID *uint) (*dto.CarritoResponse, error) {
	if clienteID != nil {
		if _, err := s.clientes.FindByID(ctx, ses.EmpresaID, *clienteID); err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("cliente %d: %w", *clienteID, ErrNoEncontrado)
			}
			return nil, err
		}
	}
	return s.mutar(ctx, ses, func(c *model.Carrito) error {
		c.ClienteID = clienteID
		return nil
	})
}

func (s *carritoService) TipoVenta(ctx context.Context, ses Sesion, tipo string) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, ses, func(c *model.Carrito) error {
		c.TipoVenta = tipo
		return nil
	})
}

func (s *carritoService) Vaciar(ctx context.Context, ses Sesion) error {
	return s.store.Delete(ctx, ses.carritoKey())
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *carritoService) mutar(ctx context.Context, ses Sesion, fn func(c *model.Carrito) error) (*dto.CarritoResponse, error) {
	c, err := s.store.Get(ctx, ses.carritoKey())
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, ses.carritoKey(), c); err != nil {
		return nil, err
	}
	return s.render(ctx, ses, c)
}

func (s *carritoService) productoVendible(ctx context.Context, empresaID, id uint) error {
	p, err := s.productos.FindByID(ctx, empresaID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return fmt.Errorf("producto %d: %w", id, ErrNoEncontrado)
		}
		return err
	}
	if !p.Activo {
		return fmt.Errorf("producto %d: %w", id, ErrNoEncontrado)
	}
	return nil
}

// render shows lines that can no longer be sold apart from the priced ones,
// so the cart stays editable; checkout still refuses them.
func (s *carritoService) render(ctx context.Context, ses Sesion, c *model.Carrito) (*dto.CarritoResponse, error) {
	lineas, total, fuera, err := preciarCarrito(ctx, s.productos, ses.EmpresaID, c)
	if err != nil {
		return nil, err
	}
	res := &dto.CarritoResponse{
		Items:         make([]dto.CarritoLineaResponse, 0, len(lineas)),
		NoDisponibles: make([]dto.CarritoNoDisponibleResponse, 0, len(fuera)),
		Total:         total,
		TipoVenta:     c.TipoVenta,
	}
	for _, f := range fuera {
		motivo := dto.MotivoProductoNoDisponible
		if errors.Is(f.Err, ErrCantidadInvalida) {
			motivo = dto.MotivoCantidadInvalida
		}
		res.NoDisponibles = append(res.NoDisponibles, dto.CarritoNoDisponibleResponse{
			ProductoID: f.ProductoID,
			Cantidad:   f.Cantidad,
			Motivo:     motivo,
		})
	}
	for _, l := range lineas {
		res.Items = append(res.Items, dto.CarritoLineaResponse{
			ProductoID:     l.Producto.ID,
			Nombre:         l.Producto.Nombre,
			UnidadMedida:   l.Producto.UnidadMedida,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.Subtotal,
			Mayoreo:        l.Mayoreo,
		})
	}
	if c.ClienteID != nil {
		cl, err := s.clientes.FindByID(ctx, ses.EmpresaID, *c.ClienteID)
		switch {
		case err == nil:
			res.Cliente = clienteToResponse(cl)
		case !errors.Is(err, ErrNoEncontrado) && !repository.IsNotFound(err):
			return nil, err
		}
	}
	return res, nil
}

func itemKey(productoID uint) string {
	return strconv.FormatUint(uint64(productoID), 10)
}
