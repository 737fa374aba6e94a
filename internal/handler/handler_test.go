package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KilOS-pos/pos-carniceria/internal/apierror"
	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/middleware"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── stubs ────────────────────────────────────────────────────────────────────

type ventaStub struct {
	err   error
	ses   service.Sesion
	req   dto.FinalizarVentaRequest
	resID uint
}

var _ service.VentaService = (*ventaStub)(nil)

func (s *ventaStub) Finalizar(_ context.Context, ses service.Sesion, req dto.FinalizarVentaRequest) (*dto.VentaResponse, error) {
	s.ses, s.req = ses, req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.VentaResponse{Pedido: dto.PedidoResponse{ID: 1, NumeroTicket: 1}}, nil
}

func (s *ventaStub) DetallePedido(_ context.Context, empresaID, id uint) (*dto.PedidoResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.resID = id
	return &dto.PedidoResponse{ID: id}, nil
}

func (s *ventaStub) Reimprimir(_ context.Context, _, _ uint) (*dto.ReimpresionResponse, error) {
	return &dto.ReimpresionResponse{}, s.err
}

type cajaStub struct {
	service.CajaService
	cerrar dto.CerrarCajaRequest
	err    error
}

func (s *cajaStub) Cerrar(_ context.Context, _ service.Sesion, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error) {
	s.cerrar = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.CerrarCajaResponse{}, nil
}

func (s *cajaStub) RegistrarRetiro(_ context.Context, _ service.Sesion, _ dto.RetiroRequest) (*dto.RegistrarRetiroResponse, error) {
	return &dto.RegistrarRetiroResponse{}, s.err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func conSesion(c *gin.Context) {
	c.Set(middleware.ClaimsKey, &middleware.JWTClaims{UserID: 7, EmpresaID: 3, Username: "ana", Rol: service.RolCajero, SID: "s-9", Tipo: "access"})
	c.Next()
}

func enviar(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ventasRouter(svc service.VentaService) *gin.Engine {
	h := NewVentasHandler(svc)
	r := gin.New()
	r.Use(conSesion)
	r.POST("/v1/ventas", h.Finalizar)
	r.GET("/v1/ventas/:id", h.Detalle)
	return r
}

func codigo(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierror.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestFinalizar_UsaSesionDelToken(t *testing.T) {
	svc := &ventaStub{}
	w := enviar(ventasRouter(svc), http.MethodPost, "/v1/ventas", `{"metodo_pago":"efectivo","monto_recibido":500}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.Sesion{EmpresaID: 3, UsuarioID: 7, Username: "ana", SID: "s-9"}, svc.ses)
	require.NotNil(t, svc.req.MontoRecibido)
	assert.Equal(t, "500", svc.req.MontoRecibido.String())
}

func TestFinalizar_ValidacionYJSON(t *testing.T) {
	r := ventasRouter(&ventaStub{})

	w := enviar(r, http.MethodPost, "/v1/ventas", `{"metodo_pago":"cheque"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var v apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, "oneof", v.Fields["MetodoPago"])

	w = enviar(r, http.MethodPost, "/v1/ventas", `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeBadRequest, codigo(t, w))
}

func TestRespondError_Mapeo(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrCarritoVacio, http.StatusBadRequest, apierror.CodeEmptyCart},
		{service.ErrMontoInvalido, http.StatusBadRequest, apierror.CodeInvalidAmount},
		{service.ErrPagoInsuficiente, http.StatusPaymentRequired, apierror.CodeInsufficientPayment},
		{fmt.Errorf("producto 4: %w", service.ErrNoEncontrado), http.StatusNotFound, apierror.CodeNotFound},
		{service.ErrCierreConcurrente, http.StatusConflict, apierror.CodeConflict},
		{service.ErrProductoConVentas, http.StatusConflict, apierror.CodeConflict},
		{service.ErrPeriodoInvalido, http.StatusBadRequest, apierror.CodeBadRequest},
		{service.ErrTokenInvalido, http.StatusUnauthorized, apierror.CodeUnauthorized},
		{service.ErrImpresoraNoDisponible, http.StatusServiceUnavailable, apierror.CodePrintBridgeUnavailable},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, apierror.CodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			w := enviar(ventasRouter(&ventaStub{err: tc.err}), http.MethodPost, "/v1/ventas", `{"metodo_pago":"tarjeta"}`)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, codigo(t, w))
		})
	}
}

func TestRespondError_NoFiltraDetallesInternos(t *testing.T) {
	w := enviar(ventasRouter(&ventaStub{err: errors.New("password=hunter2")}), http.MethodPost, "/v1/ventas", `{"metodo_pago":"tarjeta"}`)
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestRespondError_StockConDetalle(t *testing.T) {
	err := &service.StockInsuficienteError{ProductoID: 3, Producto: "Chorizo", Disponible: decimal.RequireFromString("2"), Solicitado: decimal.RequireFromString("3")}
	w := enviar(ventasRouter(&ventaStub{err: err}), http.MethodPost, "/v1/ventas", `{"metodo_pago":"tarjeta"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	var body stockDetalle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierror.CodeInsufficientStock, body.Code)
	assert.Equal(t, uint(3), body.ProductoID)
	assert.Equal(t, "Chorizo", body.Producto)
	assert.True(t, body.Disponible.Equal(decimal.NewFromInt(2)))
}

func TestParamID(t *testing.T) {
	svc := &ventaStub{}
	r := ventasRouter(svc)

	for _, p := range []string{"abc", "0", "-1"} {
		w := enviar(r, http.MethodGet, "/v1/ventas/"+p, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, p)
	}
	w := enviar(r, http.MethodGet, "/v1/ventas/42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(42), svc.resID)
}

func TestCerrarCaja_MontoComoTextoONumero(t *testing.T) {
	svc := &cajaStub{}
	h := NewCajaHandler(svc)
	r := gin.New()
	r.Use(conSesion)
	r.POST("/v1/caja/cerrar", h.Cerrar)

	w := enviar(r, http.MethodPost, "/v1/caja/cerrar", `{"monto_contado":"315.50"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "315.50", svc.cerrar.MontoContado.String())

	w = enviar(r, http.MethodPost, "/v1/caja/cerrar", `{"monto_contado":320}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "320", svc.cerrar.MontoContado.String())

	svc.err = service.ErrMontoInvalido
	w = enviar(r, http.MethodPost, "/v1/caja/cerrar", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeInvalidAmount, codigo(t, w))
}

func TestRetiro_MontoDebeSerPositivo(t *testing.T) {
	h := NewCajaHandler(&cajaStub{})
	r := gin.New()
	r.Use(conSesion)
	r.POST("/v1/caja/retiros", h.RegistrarRetiro)

	w := enviar(r, http.MethodPost, "/v1/caja/retiros", `{"monto":"0","concepto":"pago de hielo"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = enviar(r, http.MethodPost, "/v1/caja/retiros", `{"monto":"50","concepto":"pago de hielo"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPaginacion(t *testing.T) {
	var page, limit int
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		page, limit = paginacion(c)
		c.Status(http.StatusNoContent)
	})

	enviar(r, http.MethodGet, "/", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)

	enviar(r, http.MethodGet, "/?page=3&limit=500", "")
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, limit)
}
