// cmd/seeduser/main.go: crea una carniceria de demo con su administrador y
// un catalogo minimo.
// Uso: go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/config"
	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/infra"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"
	"github.com/KilOS-pos/pos-carniceria/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	viper.SetDefault("SEED_EMPRESA", "Carniceria Demo")
	viper.SetDefault("SEED_USERNAME", "admin")
	viper.SetDefault("SEED_PASSWORD", "carniceria123")

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	password := viper.GetString("SEED_PASSWORD")
	resp, err := authSvc.Registrar(ctx, dto.RegistroRequest{
		EmpresaNombre:   viper.GetString("SEED_EMPRESA"),
		Username:        viper.GetString("SEED_USERNAME"),
		Nombre:          "Administrador Demo",
		Password:        password,
		PasswordConfirm: password,
	})
	if errors.Is(err, service.ErrEmpresaDuplicada) || errors.Is(err, service.ErrUsuarioDuplicado) {
		log.Info().Err(err).Msg("demo tenant already exists, nothing to do")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create demo tenant")
	}

	productoSvc := service.NewProductoService(repository.NewProductoRepository(db))
	empresaID := resp.User.EmpresaID
	for _, p := range catalogoDemo() {
		if _, err := productoSvc.Crear(ctx, empresaID, p); err != nil {
			log.Fatal().Err(err).Str("producto", p.Nombre).Msg("failed to create product")
		}
	}

	log.Info().
		Uint("empresa_id", empresaID).
		Str("username", resp.User.Username).
		Int("productos", len(catalogoDemo())).
		Msg("demo tenant created")
}

func catalogoDemo() []dto.CrearProductoRequest {
	d := decimal.RequireFromString
	ptr := func(v decimal.Decimal) *decimal.Decimal { return &v }
	si := true
	return []dto.CrearProductoRequest{
		{Nombre: "Bistec de res", Precio: d("180"), Costo: d("130"), PrecioMayoreo: ptr(d("165")), MayoreoDesdeKg: ptr(d("5")), UnidadMedida: "kg"},
		{Nombre: "Carne molida", Precio: d("150"), Costo: d("105"), UnidadMedida: "kg"},
		{Nombre: "Chuleta de cerdo", Precio: d("120"), Costo: d("85"), PrecioMayoreo: ptr(d("110")), MayoreoDesdeKg: ptr(d("3")), UnidadMedida: "kg"},
		{Nombre: "Chorizo casero", Precio: d("95"), Costo: d("60"), Stock: ptr(d("40")), RequiereStock: &si, UnidadMedida: "pieza"},
	}
}
