package handler

import (
	"net/http"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Finalizar godoc
// @Summary      Cobra el carrito actual
// @Description  Valida stock y pago, descuenta stock y registra el pedido en una sola transaccion. La impresion del ticket es posterior y nunca revierte la venta.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FinalizarVentaRequest true "Metodo de pago"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      402  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Finalizar(c *gin.Context) {
	var req dto.FinalizarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), sesion(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Detalle godoc
// @Summary      Detalle de un pedido
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del pedido"
// @Success      200 {object} dto.PedidoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) Detalle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DetallePedido(c.Request.Context(), empresaID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reimprimir godoc
// @Summary      Reimprime el ticket de un pedido
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del pedido"
// @Success      200 {object} dto.ReimpresionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id}/reimprimir [post]
func (h *VentasHandler) Reimprimir(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Reimprimir(c.Request.Context(), empresaID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
