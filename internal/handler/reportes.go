package handler

import (
	"net/http"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Ventas godoc
// @Summary Reporte de ventas por rango de fechas locales
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param fecha_inicio query string false "AAAA-MM-DD"
// @Param fecha_fin    query string false "AAAA-MM-DD"
// @Success 200 {object} dto.ReporteVentasResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/ventas [get]
func (h *ReportesHandler) Ventas(c *gin.Context) {
	var f dto.ReporteVentasFilter
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.ReporteVentas(c.Request.Context(), empresaID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard godoc
// @Summary Serie para grafica: hoy por hora, semana y mes por dia
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param periodo query string false "hoy | semana | mes"
// @Success 200 {object} dto.DashboardResponse
// @Router /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context(), empresaID(c), c.DefaultQuery("periodo", "hoy"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary Totales, costo y margen agrupados por dia o mes
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param agrupacion query string false "dia | mes"
// @Param periodos   query int    false "Cantidad de periodos hacia atras"
// @Success 200 {object} dto.ResumenResponse
// @Router /v1/reportes/resumen [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	var f dto.ResumenFiltro
	if !bindQuery(c, &f) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), empresaID(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
