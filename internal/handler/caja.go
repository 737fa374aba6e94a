package handler

import (
	"net/http"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// RegistrarRetiro godoc
// @Summary Registra un retiro de efectivo del cajon
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RetiroRequest true "Monto y concepto"
// @Success 201 {object} dto.RegistrarRetiroResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/caja/retiros [post]
func (h *CajaHandler) RegistrarRetiro(c *gin.Context) {
	var req dto.RetiroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarRetiro(c.Request.Context(), sesion(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RetirosPendientes lists withdrawals not yet settled by a close.
func (h *CajaHandler) RetirosPendientes(c *gin.Context) {
	resp, err := h.svc.RetirosPendientes(c.Request.Context(), empresaID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Preview godoc
// @Summary Vista previa del arqueo (no liquida nada)
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ArqueoPreviewResponse
// @Router /v1/caja/arqueo [get]
func (h *CajaHandler) Preview(c *gin.Context) {
	resp, err := h.svc.Preview(c.Request.Context(), sesion(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la caja con el efectivo contado
// @Description Liquida todos los pedidos y retiros pendientes hasta el instante del cierre.
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CerrarCajaRequest true "Monto contado"
// @Success 201 {object} dto.CerrarCajaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cerrar [post]
func (h *CajaHandler) Cerrar(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), sesion(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Historial returns a paginated list of closes, newest first.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, limit := paginacion(c)
	resp, err := h.svc.Historial(c.Request.Context(), empresaID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ObtenerArqueo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerArqueo(c.Request.Context(), empresaID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
