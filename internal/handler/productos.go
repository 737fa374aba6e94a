package handler

import (
	"context"
	"net/http"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary Alta de producto
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearProductoRequest true "Producto"
// @Success 201 {object} dto.ProductoResponse
// @Failure 400 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), empresaID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista el catalogo (activos, o archivados con archivados=true)
// @Tags productos
// @Produce json
// @Security BearerAuth
// @Param nombre     query string false "Filtro por nombre"
// @Param archivados query bool   false "Solo archivados"
// @Param page       query int    false "Pagina"
// @Param limit      query int    false "Registros por pagina"
// @Success 200 {object} dto.ProductoListResponse
// @Router /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), empresaID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BuscarPOS godoc
// @Summary Busqueda de productos activos para la pantalla de venta
// @Tags pos
// @Produce json
// @Security BearerAuth
// @Param nombre query string false "Filtro por nombre"
// @Success 200 {array} dto.ProductoResponse
// @Router /v1/pos/productos [get]
func (h *ProductosHandler) BuscarPOS(c *gin.Context) {
	filter := dto.ProductoFilter{Nombre: c.Query("nombre"), Page: 1, Limit: 200}
	resp, err := h.svc.Listar(c.Request.Context(), empresaID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Data)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), empresaID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizacion parcial de producto
// @Tags productos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id   path int                           true "ID"
// @Param body body dto.ActualizarProductoRequest true "Campos a cambiar"
// @Success 200 {object} dto.ProductoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/productos/{id} [put]
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), empresaID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Archivar hides the product from the POS; sales history keeps it.
func (h *ProductosHandler) Archivar(c *gin.Context) {
	h.estado(c, h.svc.Archivar)
}

func (h *ProductosHandler) Reactivar(c *gin.Context) {
	h.estado(c, h.svc.Reactivar)
}

// Eliminar godoc
// @Summary Borra un producto que nunca se vendio
// @Tags productos
// @Security BearerAuth
// @Param id path int true "ID"
// @Success 204
// @Failure 409 {object} apierror.APIError
// @Router /v1/productos/{id}/definitivo [delete]
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	h.estado(c, h.svc.Eliminar)
}

func (h *ProductosHandler) estado(c *gin.Context, fn func(ctx context.Context, empresaID, id uint) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), empresaID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
