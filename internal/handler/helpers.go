package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/KilOS-pos/pos-carniceria/internal/apierror"
	"github.com/KilOS-pos/pos-carniceria/internal/middleware"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, "ID invalido"))
		return 0, false
	}
	return uint(id), true
}

func sesion(c *gin.Context) service.Sesion {
	return middleware.GetClaims(c).Sesion()
}

func empresaID(c *gin.Context) uint {
	return middleware.GetClaims(c).EmpresaID
}

func paginacion(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// stockDetalle is the body of a 409 INSUFFICIENT_STOCK response.
type stockDetalle struct {
	Detail     string          `json:"detail"`
	Code       string          `json:"code"`
	ProductoID uint            `json:"producto_id"`
	Producto   string          `json:"producto"`
	Disponible decimal.Decimal `json:"disponible"`
	Solicitado decimal.Decimal `json:"solicitado"`
}

// respondError maps domain errors to status and code. Anything unknown is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var stock *service.StockInsuficienteError
	switch {
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, stockDetalle{
			Detail:     stock.Error(),
			Code:       apierror.CodeInsufficientStock,
			ProductoID: stock.ProductoID,
			Producto:   stock.Producto,
			Disponible: stock.Disponible,
			Solicitado: stock.Solicitado,
		})
	case errors.Is(err, service.ErrCarritoVacio):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeEmptyCart, err.Error()))
	case errors.Is(err, service.ErrMontoInvalido):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeInvalidAmount, err.Error()))
	case errors.Is(err, service.ErrPagoInsuficiente):
		c.JSON(http.StatusPaymentRequired, apierror.WithCode(apierror.CodeInsufficientPayment, err.Error()))
	case errors.Is(err, service.ErrNoEncontrado):
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrStockInsuficiente):
		c.JSON(http.StatusConflict, apierror.WithCode(apierror.CodeInsufficientStock, err.Error()))
	case errors.Is(err, service.ErrCantidadInvalida),
		errors.Is(err, service.ErrMayoreoIncompleto),
		errors.Is(err, service.ErrStockRequerido),
		errors.Is(err, service.ErrFechaInvalida),
		errors.Is(err, service.ErrPeriodoInvalido):
		c.JSON(http.StatusBadRequest, apierror.WithCode(apierror.CodeBadRequest, err.Error()))
	case errors.Is(err, service.ErrEmpresaDuplicada),
		errors.Is(err, service.ErrUsuarioDuplicado),
		errors.Is(err, service.ErrProductoConVentas),
		errors.Is(err, service.ErrCierreConcurrente):
		c.JSON(http.StatusConflict, apierror.WithCode(apierror.CodeConflict, err.Error()))
	case errors.Is(err, service.ErrCredenciales), errors.Is(err, service.ErrTokenInvalido):
		c.JSON(http.StatusUnauthorized, apierror.WithCode(apierror.CodeUnauthorized, err.Error()))
	case errors.Is(err, service.ErrImpresoraNoDisponible):
		c.JSON(http.StatusServiceUnavailable, apierror.WithCode(apierror.CodePrintBridgeUnavailable, err.Error()))
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("handler: unexpected error")
		c.JSON(http.StatusInternalServerError, apierror.WithCode(apierror.CodeInternal, "Error interno del servidor"))
	}
}
