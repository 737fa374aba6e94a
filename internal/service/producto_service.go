package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, empresaID uint, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, empresaID, id uint) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, empresaID uint, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, empresaID, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Archivar(ctx context.Context, empresaID, id uint) error
	Reactivar(ctx context.Context, empresaID, id uint) error
	// Eliminar removes the row for good; refused once the product was sold.
	Eliminar(ctx context.Context, empresaID, id uint) error
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, empresaID uint, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		EmpresaID:      empresaID,
		Nombre:         strings.TrimSpace(req.Nombre),
		Precio:         req.Precio,
		Costo:          req.Costo,
		Stock:          req.Stock,
		PrecioMayoreo:  req.PrecioMayoreo,
		MayoreoDesdeKg: req.MayoreoDesdeKg,
		UnidadMedida:   req.UnidadMedida,
		RequiereStock:  true,
		Activo:         true,
	}
	if p.UnidadMedida == "" {
		p.UnidadMedida = model.UnidadKg
	}
	if req.RequiereStock != nil {
		p.RequiereStock = *req.RequiereStock
	}
	if err := validarProducto(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	r := productoToResponse(p)
	return &r, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, empresaID, id uint) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	r := productoToResponse(p)
	return &r, nil
}

func (s *productoService) Listar(ctx context.Context, empresaID uint, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, empresaID, filter)
	if err != nil {
		return nil, err
	}
	res := &dto.ProductoListResponse{
		Data:       make([]dto.ProductoResponse, 0, len(productos)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
	}
	for i := range productos {
		res.Data = append(res.Data, productoToResponse(&productos[i]))
	}
	return res, nil
}

// Actualizar writes only the fields present in req, scoped to the empresa.
// stock is written only when req.Stock is set and activo never, so a
// concurrent checkout decrement or archive is not undone.
func (s *productoService) Actualizar(ctx context.Context, empresaID, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	campos := map[string]any{}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
		campos["nombre"] = p.Nombre
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
		campos["precio"] = p.Precio
	}
	if req.Costo != nil {
		p.Costo = *req.Costo
		campos["costo"] = p.Costo
	}
	if req.Stock != nil {
		p.Stock = req.Stock
		campos["stock"] = *p.Stock
	}
	if req.QuitarMayoreo {
		p.PrecioMayoreo, p.MayoreoDesdeKg = nil, nil
		campos["precio_mayoreo"], campos["mayoreo_desde_kg"] = nil, nil
	} else {
		if req.PrecioMayoreo != nil {
			p.PrecioMayoreo = req.PrecioMayoreo
			campos["precio_mayoreo"] = *p.PrecioMayoreo
		}
		if req.MayoreoDesdeKg != nil {
			p.MayoreoDesdeKg = req.MayoreoDesdeKg
			campos["mayoreo_desde_kg"] = *p.MayoreoDesdeKg
		}
	}
	if req.UnidadMedida != nil {
		p.UnidadMedida = *req.UnidadMedida
		campos["unidad_medida"] = p.UnidadMedida
	}
	if req.RequiereStock != nil {
		p.RequiereStock = *req.RequiereStock
		campos["requiere_stock"] = p.RequiereStock
	}
	if err := validarProducto(p); err != nil {
		return nil, err
	}
	if len(campos) > 0 {
		if err := s.repo.Update(ctx, empresaID, id, campos); err != nil {
			return nil, notFound(err, "producto", id)
		}
	}
	return s.ObtenerPorID(ctx, empresaID, id)
}

func (s *productoService) Archivar(ctx context.Context, empresaID, id uint) error {
	return notFound(s.repo.SetActivo(ctx, empresaID, id, false), "producto", id)
}

func (s *productoService) Reactivar(ctx context.Context, empresaID, id uint) error {
	return notFound(s.repo.SetActivo(ctx, empresaID, id, true), "producto", id)
}

func (s *productoService) Eliminar(ctx context.Context, empresaID, id uint) error {
	err := s.repo.Delete(ctx, empresaID, id)
	if repository.IsForeignKeyViolation(err) {
		return ErrProductoConVentas
	}
	return notFound(err, "producto", id)
}

func (s *productoService) buscar(ctx context.Context, empresaID, id uint) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, notFound(err, "producto", id)
	}
	return p, nil
}

func validarProducto(p *model.Producto) error {
	if p.Precio.IsNegative() || p.Costo.IsNegative() {
		return fmt.Errorf("precio y costo no pueden ser negativos: %w", ErrMontoInvalido)
	}
	if !centavos(p.Precio) || !centavos(p.Costo) || (p.PrecioMayoreo != nil && !centavos(*p.PrecioMayoreo)) {
		return fmt.Errorf("los precios admiten a lo sumo 2 decimales: %w", ErrMontoInvalido)
	}
	if (p.Stock != nil && !gramos(*p.Stock)) || (p.MayoreoDesdeKg != nil && !gramos(*p.MayoreoDesdeKg)) {
		return fmt.Errorf("stock y mayoreo_desde_kg admiten a lo sumo 3 decimales: %w", ErrCantidadInvalida)
	}
	if (p.PrecioMayoreo == nil) != (p.MayoreoDesdeKg == nil) {
		return ErrMayoreoIncompleto
	}
	if p.PrecioMayoreo != nil && (p.PrecioMayoreo.IsNegative() || !p.MayoreoDesdeKg.IsPositive()) {
		return ErrMayoreoIncompleto
	}
	if p.RequiereStock && p.Stock == nil {
		return ErrStockRequerido
	}
	if p.Stock != nil && p.Stock.LessThan(decimal.Zero) {
		return fmt.Errorf("stock negativo: %w", ErrCantidadInvalida)
	}
	return nil
}

// notFound translates gorm's missing-row error into ErrNoEncontrado.
func notFound(err error, recurso string, id uint) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s %d: %w", recurso, id, ErrNoEncontrado)
	}
	return err
}

func centavos(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }

func gramos(d decimal.Decimal) bool { return d.Equal(d.Round(3)) }
