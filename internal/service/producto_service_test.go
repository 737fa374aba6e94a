package service

import (
	"context"
	"testing"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductoCrear_Validaciones(t *testing.T) {
	svc := NewProductoService(newMemProductos())
	ctx := context.Background()
	no := false

	tests := []struct {
		name string
		req  dto.CrearProductoRequest
		want error
	}{
		{"stock requerido", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180")}, ErrStockRequerido},
		{"mayoreo sin umbral", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180"), Stock: dp("1"), PrecioMayoreo: dp("150")}, ErrMayoreoIncompleto},
		{"umbral cero", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180"), Stock: dp("1"), PrecioMayoreo: dp("150"), MayoreoDesdeKg: dp("0")}, ErrMayoreoIncompleto},
		{"precio negativo", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("-1"), RequiereStock: &no}, ErrMontoInvalido},
		{"stock negativo", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("1"), Stock: dp("-2")}, ErrCantidadInvalida},
		{"precio con milesimos", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180.005"), RequiereStock: &no}, ErrMontoInvalido},
		{"mayoreo con milesimos", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180"), Stock: dp("1"), PrecioMayoreo: dp("150.001"), MayoreoDesdeKg: dp("5")}, ErrMontoInvalido},
		{"stock con diezmilesimos", dto.CrearProductoRequest{Nombre: "Bistec", Precio: dec("180"), Stock: dp("1.0005")}, ErrCantidadInvalida},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Crear(ctx, 1, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProductoCrear_Defaults(t *testing.T) {
	svc := NewProductoService(newMemProductos())
	no := false

	p, err := svc.Crear(context.Background(), 1, dto.CrearProductoRequest{Nombre: "  Molida  ", Precio: dec("150"), RequiereStock: &no})
	require.NoError(t, err)
	assert.Equal(t, "Molida", p.Nombre)
	assert.Equal(t, model.UnidadKg, p.UnidadMedida)
	assert.True(t, p.Activo)
	assert.False(t, p.RequiereStock)
	assert.NotZero(t, p.ID)
}

func TestProductoActualizar(t *testing.T) {
	repo := newMemProductos(catalogo()...)
	svc := NewProductoService(repo)
	ctx := context.Background()

	p, err := svc.Actualizar(ctx, 1, 1, dto.ActualizarProductoRequest{Precio: dp("190"), QuitarMayoreo: true})
	require.NoError(t, err)
	assert.True(t, p.Precio.Equal(dec("190")))
	assert.Nil(t, p.PrecioMayoreo)
	assert.Nil(t, p.MayoreoDesdeKg)
	assert.Nil(t, repo.get(1).PrecioMayoreo)

	_, err = svc.Actualizar(ctx, 2, 1, dto.ActualizarProductoRequest{Precio: dp("1")})
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestProductoActualizar_NoPisaVentaConcurrente(t *testing.T) {
	repo := newMemProductos(catalogo()...)
	svc := NewProductoService(repo)
	ctx := context.Background()

	// A checkout commits a 5 kg decrement and an admin archives the
	// product after the edit read the row but before it writes.
	repo.antesDeUpdate = func() {
		ok, err := repo.DescontarStockTx(ctx, nil, 1, 1, dec("5"))
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, repo.SetActivo(ctx, 1, 1, false))
	}

	p, err := svc.Actualizar(ctx, 1, 1, dto.ActualizarProductoRequest{Precio: dp("190")})
	require.NoError(t, err)
	assert.True(t, p.Precio.Equal(dec("190")))
	assert.True(t, p.Stock.Equal(dec("15")), "the sold stock stays sold")
	assert.False(t, p.Activo)

	got := repo.get(1)
	assert.True(t, got.Stock.Equal(dec("15")))
	assert.False(t, got.Activo)
}

func TestProductoActualizar_StockExplicito(t *testing.T) {
	repo := newMemProductos(catalogo()...)
	svc := NewProductoService(repo)

	p, err := svc.Actualizar(context.Background(), 1, 1, dto.ActualizarProductoRequest{Stock: dp("42.5")})
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(dec("42.5")))
	assert.True(t, p.Precio.Equal(dec("180")))

	_, err = svc.Actualizar(context.Background(), 1, 1, dto.ActualizarProductoRequest{Stock: dp("1.2345")})
	assert.ErrorIs(t, err, ErrCantidadInvalida)
	assert.True(t, repo.get(1).Stock.Equal(dec("42.5")))
}

func TestProductoArchivarReactivar(t *testing.T) {
	repo := newMemProductos(catalogo()...)
	svc := NewProductoService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Archivar(ctx, 1, 1))
	assert.False(t, repo.get(1).Activo)

	activos, err := svc.Listar(ctx, 1, dto.ProductoFilter{})
	require.NoError(t, err)
	for _, p := range activos.Data {
		assert.NotEqual(t, uint(1), p.ID)
	}
	archivados, err := svc.Listar(ctx, 1, dto.ProductoFilter{Archivados: true})
	require.NoError(t, err)
	assert.Len(t, archivados.Data, 2)

	require.NoError(t, svc.Reactivar(ctx, 1, 1))
	assert.True(t, repo.get(1).Activo)

	assert.ErrorIs(t, svc.Archivar(ctx, 1, 99), ErrNoEncontrado)
}

func TestProductoEliminar(t *testing.T) {
	repo := newMemProductos(catalogo()...)
	svc := NewProductoService(repo)
	ctx := context.Background()

	repo.delFK = true
	assert.ErrorIs(t, svc.Eliminar(ctx, 1, 1), ErrProductoConVentas)

	repo.delFK = false
	require.NoError(t, svc.Eliminar(ctx, 1, 1))
	_, err := svc.ObtenerPorID(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestProductoListar_Paginacion(t *testing.T) {
	svc := NewProductoService(newMemProductos(catalogo()...))
	res, err := svc.Listar(context.Background(), 1, dto.ProductoFilter{Nombre: "carne", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 1, res.TotalPages)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Carne molida", res.Data[0].Nombre)
}
