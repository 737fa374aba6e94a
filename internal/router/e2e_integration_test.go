//go:build integration

// End-to-end tests against real Postgres and Redis via testcontainers, with
// a fake print bridge. Run with: go test -tags integration ./internal/router/... -v

package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/config"
	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/infra"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	token  string // admin, first session
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("carniceria_test"),
		tcPostgres.WithUsername("carniceria"),
		tcPostgres.WithPassword("carniceria"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	puente := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"Ticket impreso"}`))
	}))
	t.Cleanup(puente.Close)

	cfg := &config.Config{
		Port:                8000,
		Env:                 "test",
		JWTSecret:           "test-secret-key-with-enough-length",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		DatabaseURL:         pgURL,
		RedisURL:            rdURL,
		CartTTLHours:        8,
		TillCloseMaxRetries: 10,
		PrintBridgeURL:      puente.URL,
		PrintTimeoutSeconds: 2,
		Timezone:            "UTC",
		WorkerPoolSize:      1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	printer := infra.NewPrintBridgeClient(cfg.PrintBridgeURL, cfg.PrintTimeout(), infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	gin.SetMode(gin.TestMode)
	srv := httptest.NewServer(router.New(cfg, router.Deps{DB: db, Redis: rdb, Printer: printer}))
	t.Cleanup(srv.Close)

	resp := do(t, srv, "POST", "/v1/auth/registro", jsonBody(t, map[string]any{
		"empresa_nombre":   "Carniceria Lupita",
		"username":         "lupita",
		"nombre":           "Guadalupe",
		"password":         "carnes-2026",
		"password_confirm": "carnes-2026",
	}), "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)

	return &testEnv{server: srv, db: db, token: login.AccessToken}
}

// nuevaSesion logs in again; every login gets its own cart.
func (e *testEnv) nuevaSesion(t *testing.T) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/auth/login", jsonBody(t, map[string]string{"username": "lupita", "password": "carnes-2026"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	return login.AccessToken
}

func (e *testEnv) crearProducto(t *testing.T, body map[string]any) dto.ProductoResponse {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/productos", jsonBody(t, body), e.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductoResponse
	decodeJSON(t, resp, &p)
	return p
}

func (e *testEnv) agregar(t *testing.T, token string, productoID uint, cantidad string) {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/carrito/items", jsonBody(t, map[string]any{"producto_id": productoID, "cantidad": cantidad}), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_VentaYCierreDeCaja(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, map[string]any{
		"nombre": "Bistec de res", "precio": "200", "costo": "150", "stock": "7.5",
		"precio_mayoreo": "180", "mayoreo_desde_kg": "5",
	})

	env.agregar(t, env.token, prod.ID, "2.5")

	resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{"metodo_pago": "efectivo", "monto_recibido": "499.99"}), env.token)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{"metodo_pago": "efectivo", "monto_recibido": 500}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta dto.VentaResponse
	decodeJSON(t, resp, &venta)
	assert.Equal(t, 1, venta.Pedido.NumeroTicket)
	assert.True(t, venta.Pedido.Total.Equal(d("500")))
	assert.True(t, venta.Pedido.CambioEntregado.IsZero())
	assert.True(t, venta.Impresion.Impreso)
	assert.Contains(t, venta.TicketTexto, "TICKET: #000001")

	resp = do(t, env.server, "GET", fmt.Sprintf("/v1/productos/%d", prod.ID), nil, env.token)
	var actual dto.ProductoResponse
	decodeJSON(t, resp, &actual)
	assert.True(t, actual.Stock.Equal(d("5")))

	var carrito dto.CarritoResponse
	decodeJSON(t, do(t, env.server, "GET", "/v1/carrito", nil, env.token), &carrito)
	assert.Empty(t, carrito.Items, "checkout clears the cart")

	resp = do(t, env.server, "POST", "/v1/caja/retiros", jsonBody(t, map[string]any{"monto": "100", "concepto": "pago de hielo"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var preview dto.ArqueoPreviewResponse
	decodeJSON(t, do(t, env.server, "GET", "/v1/caja/arqueo", nil, env.token), &preview)
	assert.True(t, preview.EfectivoEsperado.Equal(d("400")))

	resp = do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{"monto_contado": "abc"}), env.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{"monto_contado": "400"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cierre dto.CerrarCajaResponse
	decodeJSON(t, resp, &cierre)
	assert.Equal(t, "exacto", cierre.Arqueo.Clasificacion)
	assert.Equal(t, 1, cierre.Arqueo.NumPedidos)
	assert.Equal(t, 1, cierre.Arqueo.NumRetiros)

	decodeJSON(t, do(t, env.server, "GET", "/v1/caja/arqueo", nil, env.token), &preview)
	assert.Zero(t, preview.NumPedidos)
	assert.True(t, preview.EfectivoEsperado.IsZero())
}

func TestE2E_TotalGuardadoCuadraConLasLineas(t *testing.T) {
	env := setupTestEnv(t)
	pulpa := env.crearProducto(t, map[string]any{"nombre": "Pulpa", "precio": "99.99", "stock": "10"})
	costilla := env.crearProducto(t, map[string]any{"nombre": "Costilla", "precio": "133.33", "requiere_stock": false})

	resp := do(t, env.server, "POST", "/v1/carrito/items", jsonBody(t, map[string]any{"producto_id": pulpa.ID, "cantidad": "1.2345"}), env.token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "grams are the finest unit")
	resp.Body.Close()

	env.agregar(t, env.token, pulpa.ID, "1.235")
	env.agregar(t, env.token, costilla.ID, "0.777")

	resp = do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{"metodo_pago": "efectivo", "monto_recibido": "300"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var venta dto.VentaResponse
	decodeJSON(t, resp, &venta)

	var guardado model.Pedido
	require.NoError(t, env.db.Preload("Items").First(&guardado, venta.Pedido.ID).Error)
	require.Len(t, guardado.Items, 2)
	suma := decimal.Zero
	for _, it := range guardado.Items {
		suma = suma.Add(it.Cantidad.Mul(it.PrecioUnitario))
	}
	// 1.235 × 99.99 + 0.777 × 133.33
	assert.True(t, guardado.Total.Equal(d("227.08506")), guardado.Total.String())
	assert.True(t, suma.Equal(guardado.Total), "stored lines %s vs stored total %s", suma, guardado.Total)
	assert.True(t, guardado.Total.Equal(venta.Pedido.Total))
	assert.True(t, guardado.CambioEntregado.Equal(d("300").Sub(guardado.Total)))

	var p model.Producto
	require.NoError(t, env.db.First(&p, pulpa.ID).Error)
	assert.True(t, p.Stock.Equal(d("8.765")))
}

func TestE2E_VentasConcurrentesNoSobrevenden(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, map[string]any{"nombre": "Lomo", "precio": "250", "stock": "5"})

	const cajeros = 5
	tokens := make([]string, cajeros)
	for i := range tokens {
		tokens[i] = env.nuevaSesion(t)
		env.agregar(t, tokens[i], prod.ID, "2")
	}

	var wg sync.WaitGroup
	codigos := make([]int, cajeros)
	for i, tok := range tokens {
		wg.Add(1)
		go func(i int, tok string) {
			defer wg.Done()
			resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{"metodo_pago": "tarjeta"}), tok)
			codigos[i] = resp.StatusCode
			resp.Body.Close()
		}(i, tok)
	}
	wg.Wait()

	ok, conflicto := 0, 0
	for _, c := range codigos {
		switch c {
		case http.StatusCreated:
			ok++
		case http.StatusConflict:
			conflicto++
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 3, conflicto)

	var actual dto.ProductoResponse
	decodeJSON(t, do(t, env.server, "GET", fmt.Sprintf("/v1/productos/%d", prod.ID), nil, env.token), &actual)
	assert.True(t, actual.Stock.Equal(d("1")))
}

// Sales keep landing while closes run; every sale must end up in exactly one Arqueo.
func TestE2E_CierreConcurrenteConVentas(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.crearProducto(t, map[string]any{"nombre": "Molida", "precio": "150", "requiere_stock": false})

	const (
		cajeros = 3
		ventas  = 4
	)
	tokens := make([]string, cajeros)
	for i := range tokens {
		tokens[i] = env.nuevaSesion(t)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		vendidos int
	)
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok string) {
			defer wg.Done()
			for j := 0; j < ventas; j++ {
				env.agregar(t, tok, prod.ID, "1")
				resp := do(t, env.server, "POST", "/v1/ventas", jsonBody(t, map[string]any{"metodo_pago": "efectivo", "monto_recibido": "150"}), tok)
				if resp.StatusCode == http.StatusCreated {
					mu.Lock()
					vendidos++
					mu.Unlock()
				}
				resp.Body.Close()
			}
		}(tok)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for k := 0; k < 3; k++ {
			resp := do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{"monto_contado": "0"}), env.token)
			assert.Contains(t, []int{http.StatusCreated, http.StatusConflict}, resp.StatusCode)
			resp.Body.Close()
			time.Sleep(20 * time.Millisecond)
		}
	}()
	wg.Wait()

	resp := do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{"monto_contado": "0"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	var historial dto.ArqueoListResponse
	decodeJSON(t, do(t, env.server, "GET", "/v1/caja/arqueos?limit=100", nil, env.token), &historial)

	pedidos := 0
	total := decimal.Zero
	for _, a := range historial.Data {
		pedidos += a.NumPedidos
		total = total.Add(a.VentasEfectivo)
	}
	assert.Equal(t, vendidos, pedidos)
	assert.True(t, total.Equal(decimal.NewFromInt(int64(150*vendidos))), total.String())

	var preview dto.ArqueoPreviewResponse
	decodeJSON(t, do(t, env.server, "GET", "/v1/caja/arqueo", nil, env.token), &preview)
	assert.Zero(t, preview.NumPedidos)
}

func TestE2E_Health(t *testing.T) {
	env := setupTestEnv(t)
	resp := do(t, env.server, "GET", "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "closed", body["impresora"])
}
