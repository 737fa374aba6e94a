package handler

import (
	"net/http"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
)

// CarritoHandler operates on the caller's own cart, keyed by the JWT session.
type CarritoHandler struct{ svc service.CarritoService }

func NewCarritoHandler(svc service.CarritoService) *CarritoHandler {
	return &CarritoHandler{svc: svc}
}

// Ver godoc
// @Summary Carrito actual con precios vigentes
// @Tags carrito
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CarritoResponse
// @Router /v1/carrito [get]
func (h *CarritoHandler) Ver(c *gin.Context) {
	resp, err := h.svc.Ver(c.Request.Context(), sesion(c))
	h.responder(c, resp, err)
}

// Agregar godoc
// @Summary Agrega un producto (o suma a su linea)
// @Tags carrito
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AgregarItemRequest true "Producto y cantidad"
// @Success 200 {object} dto.CarritoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/carrito/items [post]
func (h *CarritoHandler) Agregar(c *gin.Context) {
	var req dto.AgregarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Agregar(c.Request.Context(), sesion(c), req)
	h.responder(c, resp, err)
}

// ActualizarCantidad godoc
// @Summary Cambia la cantidad de una linea; cero o menos la quita
// @Tags carrito
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param producto_id path int                           true "Producto"
// @Param body        body dto.ActualizarCantidadRequest true "Cantidad"
// @Success 200 {object} dto.CarritoResponse
// @Router /v1/carrito/items/{producto_id} [put]
func (h *CarritoHandler) ActualizarCantidad(c *gin.Context) {
	id, ok := paramID(c, "producto_id")
	if !ok {
		return
	}
	var req dto.ActualizarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCantidad(c.Request.Context(), sesion(c), id, req)
	h.responder(c, resp, err)
}

func (h *CarritoHandler) Quitar(c *gin.Context) {
	id, ok := paramID(c, "producto_id")
	if !ok {
		return
	}
	resp, err := h.svc.Quitar(c.Request.Context(), sesion(c), id)
	h.responder(c, resp, err)
}

func (h *CarritoHandler) SeleccionarCliente(c *gin.Context) {
	var req dto.SeleccionarClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SeleccionarCliente(c.Request.Context(), sesion(c), req.ClienteID)
	h.responder(c, resp, err)
}

func (h *CarritoHandler) TipoVenta(c *gin.Context) {
	var req dto.TipoVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.TipoVenta(c.Request.Context(), sesion(c), req.TipoVenta)
	h.responder(c, resp, err)
}

func (h *CarritoHandler) Vaciar(c *gin.Context) {
	if err := h.svc.Vaciar(c.Request.Context(), sesion(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CarritoHandler) responder(c *gin.Context, resp *dto.CarritoResponse, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
