package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors. Handlers map them to HTTP status and a stable code; every
// one except ErrImpresoraNoDisponible is raised before any write.
var (
	ErrCarritoVacio          = errors.New("El carrito está vacío")
	ErrNoEncontrado          = errors.New("Recurso no encontrado")
	ErrStockInsuficiente     = errors.New("Stock insuficiente")
	ErrMontoInvalido         = errors.New("Monto inválido")
	ErrPagoInsuficiente      = errors.New("El monto recibido es menor al total")
	ErrImpresoraNoDisponible = errors.New("No se pudo conectar con el servicio de impresión")

	ErrProductoConVentas = errors.New("El producto tiene ventas registradas; archívalo en lugar de eliminarlo")
	ErrEmpresaDuplicada  = errors.New("Ya existe una empresa con ese nombre")
	ErrUsuarioDuplicado  = errors.New("El nombre de usuario ya está en uso")
	ErrCredenciales      = errors.New("Credenciales inválidas")
	ErrMayoreoIncompleto = errors.New("precio_mayoreo y mayoreo_desde_kg deben indicarse juntos")
	ErrStockRequerido    = errors.New("Un producto que requiere stock debe tener stock inicial")
	ErrCierreConcurrente = errors.New("Otro cierre de caja está en curso; intenta de nuevo")
	ErrCantidadInvalida  = errors.New("La cantidad debe ser mayor a cero y tener a lo sumo 3 decimales")
	ErrFechaInvalida     = errors.New("Fecha inválida; usa el formato AAAA-MM-DD")
	ErrTokenInvalido     = errors.New("Refresh token inválido o expirado")
	ErrPeriodoInvalido   = errors.New("Periodo no soportado")
)

// StockInsuficienteError names the product that blocked the sale.
// SinStock marks a stock-tracked product that has no stock configured.
type StockInsuficienteError struct {
	ProductoID uint
	Producto   string
	Disponible decimal.Decimal
	Solicitado decimal.Decimal
	SinStock   bool
}

func (e *StockInsuficienteError) Error() string {
	if e.SinStock {
		return fmt.Sprintf("El producto %s requiere stock pero no tiene stock configurado", e.Producto)
	}
	return fmt.Sprintf("Stock insuficiente para %s: disponible %s, solicitado %s",
		e.Producto, e.Disponible.StringFixed(3), e.Solicitado.StringFixed(3))
}

func (e *StockInsuficienteError) Is(target error) bool { return target == ErrStockInsuficiente }
