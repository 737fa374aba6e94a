package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/metrics"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"
	"github.com/KilOS-pos/pos-carniceria/internal/ticket"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type VentaService interface {
	Finalizar(ctx context.Context, ses Sesion, req dto.FinalizarVentaRequest) (*dto.VentaResponse, error)
	DetallePedido(ctx context.Context, empresaID, id uint) (*dto.PedidoResponse, error)
	Reimprimir(ctx context.Context, empresaID, id uint) (*dto.ReimpresionResponse, error)
}

type ventaService struct {
	pedidos   repository.PedidoRepository
	productos repository.ProductoRepository
	clientes  repository.ClienteRepository
	carritos  repository.CarritoRepository
	impresion ImpresionService
	membrete  *Membrete
}

func NewVentaService(
	pedidos repository.PedidoRepository,
	productos repository.ProductoRepository,
	clientes repository.ClienteRepository,
	carritos repository.CarritoRepository,
	impresion ImpresionService,
	membrete *Membrete,
) VentaService {
	return &ventaService{
		pedidos:   pedidos,
		productos: productos,
		clientes:  clientes,
		carritos:  carritos,
		impresion: impresion,
		membrete:  membrete,
	}
}

// ── Finalizar ────────────────────────────────────────────────────────────────
//   1. Pre-flight outside the TX: price the cart, validate stock for every
//      line, validate the payment.
//   2. BEGIN TX: lock products FOR UPDATE, re-validate, conditional stock
//      decrement, next ticket number, create pedido + items.
//   3. COMMIT, then clear the cart and print (best-effort).

func (s *ventaService) Finalizar(ctx context.Context, ses Sesion, req dto.FinalizarVentaRequest) (res *dto.VentaResponse, err error) {
	ctx, span := tracer.Start(ctx, "venta.Finalizar", trace.WithAttributes(
		attribute.Int("empresa.id", int(ses.EmpresaID)),
		attribute.String("venta.metodo", req.MetodoPago),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.VentasRechazadas.WithLabelValues(motivoRechazo(err)).Inc()
		}
		span.End()
	}()

	carrito, err := s.carritos.Get(ctx, ses.carritoKey())
	if err != nil {
		return nil, err
	}
	if carrito.Vacio() {
		return nil, ErrCarritoVacio
	}

	lineas, total, err := calcularCarrito(ctx, s.productos, ses.EmpresaID, carrito)
	if err != nil {
		return nil, err
	}
	if err := validarStock(lineas); err != nil {
		return nil, err
	}

	pedido := &model.Pedido{
		EmpresaID:  ses.EmpresaID,
		TipoVenta:  carrito.TipoVenta,
		Total:      total,
		MetodoPago: req.MetodoPago,
		UsuarioID:  &ses.UsuarioID,
	}
	if pedido.TipoVenta == "" {
		pedido.TipoVenta = model.TipoMostrador
	}

	switch req.MetodoPago {
	case model.MetodoEfectivo:
		if req.MontoRecibido == nil {
			return nil, ErrMontoInvalido
		}
		recibido, err := parseMonto(req.MontoRecibido.String())
		if err != nil {
			return nil, err
		}
		if recibido.LessThan(total) {
			return nil, ErrPagoInsuficiente
		}
		pedido.MontoRecibido = dptr(recibido)
		pedido.CambioEntregado = dptr(recibido.Sub(total))
	case model.MetodoTarjeta:
	default:
		return nil, fmt.Errorf("metodo de pago %q: %w", req.MetodoPago, ErrMontoInvalido)
	}

	if carrito.ClienteID != nil {
		cl, err := s.clientes.FindByID(ctx, ses.EmpresaID, *carrito.ClienteID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("cliente %d: %w", *carrito.ClienteID, ErrNoEncontrado)
			}
			return nil, err
		}
		pedido.ClienteID = &cl.ID
		pedido.Cliente = cl
	}

	for _, l := range lineas {
		pedido.Items = append(pedido.Items, model.PedidoItem{
			ProductoID:     l.Producto.ID,
			Nombre:         l.Producto.Nombre,
			UnidadMedida:   l.Producto.UnidadMedida,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.Subtotal,
			Mayoreo:        l.Mayoreo,
		})
	}

	err = runTx(ctx, s.pedidos.DB(), func(tx *gorm.DB) error {
		ids := make([]uint, len(lineas))
		for i, l := range lineas {
			ids[i] = l.Producto.ID
		}
		bloqueados, err := s.productos.LockByIDsTx(ctx, tx, ses.EmpresaID, ids)
		if err != nil {
			return err
		}
		actuales, err := revalidarStock(lineas, bloqueados)
		if err != nil {
			return err
		}

		for _, l := range actuales {
			if !l.Producto.RequiereStock {
				continue
			}
			ok, err := s.productos.DescontarStockTx(ctx, tx, ses.EmpresaID, l.Producto.ID, l.Cantidad)
			if err != nil {
				return err
			}
			if !ok {
				return &StockInsuficienteError{ProductoID: l.Producto.ID, Producto: l.Producto.Nombre, Solicitado: l.Cantidad}
			}
		}

		numero, err := s.pedidos.NextTicketNumberTx(ctx, tx, ses.EmpresaID)
		if err != nil {
			return err
		}
		pedido.NumeroTicket = numero

		return s.pedidos.CreateTx(ctx, tx, pedido)
	})
	if err != nil {
		return nil, err
	}

	metrics.VentasTotal.WithLabelValues(pedido.MetodoPago).Inc()
	span.SetAttributes(attribute.Int("pedido.id", int(pedido.ID)), attribute.Int("pedido.ticket", pedido.NumeroTicket))

	if derr := s.carritos.Delete(ctx, ses.carritoKey()); derr != nil {
		log.Warn().Err(derr).Uint("pedido_id", pedido.ID).Msg("venta: no se pudo vaciar el carrito")
	}

	res = &dto.VentaResponse{Pedido: pedidoToResponse(pedido, s.membrete.Loc())}
	res.TicketTexto, res.Impresion = s.imprimir(ctx, ses.EmpresaID, pedido)
	return res, nil
}

func (s *ventaService) DetallePedido(ctx context.Context, empresaID, id uint) (*dto.PedidoResponse, error) {
	p, err := s.buscar(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	r := pedidoToResponse(p, s.membrete.Loc())
	return &r, nil
}

func (s *ventaService) Reimprimir(ctx context.Context, empresaID, id uint) (*dto.ReimpresionResponse, error) {
	p, err := s.buscar(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	res := &dto.ReimpresionResponse{}
	res.TicketTexto, res.Impresion = s.imprimir(ctx, empresaID, p)
	return res, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *ventaService) buscar(ctx context.Context, empresaID, id uint) (*model.Pedido, error) {
	p, err := s.pedidos.FindByID(ctx, empresaID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("pedido %d: %w", id, ErrNoEncontrado)
		}
		return nil, err
	}
	return p, nil
}

// imprimir runs after the commit; its failure only produces an aviso.
func (s *ventaService) imprimir(ctx context.Context, empresaID uint, p *model.Pedido) (string, dto.ImpresionResponse) {
	enc, err := s.membrete.Para(ctx, empresaID)
	if err != nil {
		log.Error().Err(err).Uint("empresa_id", empresaID).Msg("venta: membrete no disponible")
		aviso := "No se pudo generar el ticket"
		return "", dto.ImpresionResponse{Aviso: &aviso}
	}
	texto := ticket.Venta(enc, p)
	return texto, s.impresion.Enviar(ctx, texto)
}

// revalidarStock repeats validarStock against rows read under FOR UPDATE and
// returns the lines carrying those rows; prices stay as quoted.
func revalidarStock(lineas []lineaCarrito, bloqueados []model.Producto) ([]lineaCarrito, error) {
	porID := make(map[uint]model.Producto, len(bloqueados))
	for _, p := range bloqueados {
		porID[p.ID] = p
	}
	actuales := make([]lineaCarrito, len(lineas))
	for i, l := range lineas {
		p, ok := porID[l.Producto.ID]
		if !ok || !p.Activo {
			return nil, fmt.Errorf("producto %d: %w", l.Producto.ID, ErrNoEncontrado)
		}
		l.Producto = p
		actuales[i] = l
	}
	if err := validarStock(actuales); err != nil {
		return nil, err
	}
	return actuales, nil
}

func motivoRechazo(err error) string {
	switch {
	case errors.Is(err, ErrCarritoVacio):
		return "carrito_vacio"
	case errors.Is(err, ErrNoEncontrado):
		return "no_encontrado"
	case errors.Is(err, ErrStockInsuficiente):
		return "stock_insuficiente"
	case errors.Is(err, ErrMontoInvalido):
		return "monto_invalido"
	case errors.Is(err, ErrPagoInsuficiente):
		return "pago_insuficiente"
	default:
		return "error"
	}
}
