package router

import (
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/config"
	"github.com/KilOS-pos/pos-carniceria/internal/handler"
	"github.com/KilOS-pos/pos-carniceria/internal/infra"
	"github.com/KilOS-pos/pos-carniceria/internal/metrics"
	"github.com/KilOS-pos/pos-carniceria/internal/middleware"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"
	"github.com/KilOS-pos/pos-carniceria/internal/service"
	"github.com/KilOS-pos/pos-carniceria/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the shared infrastructure pieces built by main. Dispatcher may
// be nil, in which case failed prints are not queued and no close report is
// mailed.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Printer    *infra.PrintBridgeClient
	Dispatcher *worker.Dispatcher
	// EmailArqueo enables the close report mail.
	EmailArqueo bool
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(metrics.Middleware())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	productoRepo := repository.NewProductoRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	pedidoRepo := repository.NewPedidoRepository(d.DB)
	cajaRepo := repository.NewCajaRepository(d.DB)
	reporteRepo := repository.NewReporteRepository(d.DB)
	carritoRepo := repository.NewCarritoRepository(d.Redis, cfg.CartTTL())

	// ── Services ─────────────────────────────────────────────────────────────
	var cola service.ColaImpresion
	if cfg.PrintRetryEnabled && d.Dispatcher != nil {
		cola = d.Dispatcher
	}
	impresionSvc := service.NewImpresionService(d.Printer, cola)
	membrete := service.NewMembrete(usuarioRepo, cfg.TicketEslogan, loc)

	cajaOpts := []service.CajaOption{service.WithReintentos(cfg.TillCloseMaxRetries)}
	if d.EmailArqueo && d.Dispatcher != nil {
		cajaOpts = append(cajaOpts, service.WithNotificador(d.Dispatcher))
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	carritoSvc := service.NewCarritoService(carritoRepo, productoRepo, clienteRepo)
	ventaSvc := service.NewVentaService(pedidoRepo, productoRepo, clienteRepo, carritoRepo, impresionSvc, membrete)
	cajaSvc := service.NewCajaService(cajaRepo, usuarioRepo, impresionSvc, membrete, cajaOpts...)
	reporteSvc := service.NewReporteService(pedidoRepo, reporteRepo, loc, time.Now)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	carritoH := handler.NewCarritoHandler(carritoSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Printer.Breaker()))
	r.GET("/metrics", metrics.Handler())

	auth := r.Group("/v1/auth")
	{
		auth.POST("/registro", middleware.LoginRateLimiter(), authH.Registro)
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole(service.RolCajero, service.RolAdministrador)
	admin := middleware.RequireRole(service.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/pos/productos", todos, productosH.BuscarPOS)

		carrito := v1.Group("/carrito", todos)
		{
			carrito.GET("", carritoH.Ver)
			carrito.DELETE("", carritoH.Vaciar)
			carrito.POST("/items", carritoH.Agregar)
			carrito.PUT("/items/:producto_id", carritoH.ActualizarCantidad)
			carrito.DELETE("/items/:producto_id", carritoH.Quitar)
			carrito.PUT("/cliente", carritoH.SeleccionarCliente)
			carrito.PUT("/tipo", carritoH.TipoVenta)
		}

		ventas := v1.Group("/ventas", todos)
		{
			ventas.POST("", ventasH.Finalizar)
			ventas.GET("/:id", ventasH.Detalle)
			ventas.POST("/:id/reimprimir", ventasH.Reimprimir)
		}

		prods := v1.Group("/productos", admin)
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Archivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.DELETE("/:id/definitivo", productosH.Eliminar)
		}

		// Cashiers pick and register delivery customers at the counter
		clientes := v1.Group("/clientes", todos)
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", clientesH.Crear)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", admin, clientesH.Eliminar)
		}

		caja := v1.Group("/caja")
		{
			caja.POST("/retiros", todos, cajaH.RegistrarRetiro)
			caja.GET("/retiros", todos, cajaH.RetirosPendientes)
			caja.GET("/arqueo", todos, cajaH.Preview)
			caja.POST("/cerrar", todos, cajaH.Cerrar)
			caja.GET("/arqueos", admin, cajaH.Historial)
			caja.GET("/arqueos/:id", admin, cajaH.ObtenerArqueo)
		}

		reportes := v1.Group("/reportes", admin)
		{
			reportes.GET("/ventas", reportesH.Ventas)
			reportes.GET("/dashboard", reportesH.Dashboard)
			reportes.GET("/resumen", reportesH.Resumen)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
		}
	}

	// Swagger UI only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
