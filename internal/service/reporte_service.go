package service

import (
	"context"
	"fmt"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"

	"github.com/shopspring/decimal"
)

// Dashboard periods.
const (
	PeriodoHoy    = "hoy"
	PeriodoSemana = "semana"
	PeriodoMes    = "mes"
)

// ReporteService is read-only. Every bucket boundary is a local
// midnight/hour of the configured timezone.
type ReporteService interface {
	ReporteVentas(ctx context.Context, empresaID uint, f dto.ReporteVentasFilter) (*dto.ReporteVentasResponse, error)
	Dashboard(ctx context.Context, empresaID uint, periodo string) (*dto.DashboardResponse, error)
	Resumen(ctx context.Context, empresaID uint, f dto.ResumenFiltro) (*dto.ResumenResponse, error)
}

type reporteService struct {
	pedidos repository.PedidoRepository
	repo    repository.ReporteRepository
	loc     *time.Location
	now     func() time.Time
}

func NewReporteService(pedidos repository.PedidoRepository, repo repository.ReporteRepository, loc *time.Location, now func() time.Time) ReporteService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &reporteService{pedidos: pedidos, repo: repo, loc: loc, now: now}
}

func (s *reporteService) ReporteVentas(ctx context.Context, empresaID uint, f dto.ReporteVentasFilter) (*dto.ReporteVentasResponse, error) {
	hoy := s.medianoche(s.now())
	inicio, fin := hoy, hoy
	var err error
	if f.FechaInicio != "" {
		if inicio, err = time.ParseInLocation(time.DateOnly, f.FechaInicio, s.loc); err != nil {
			return nil, ErrFechaInvalida
		}
		fin = inicio
	}
	if f.FechaFin != "" {
		if fin, err = time.ParseInLocation(time.DateOnly, f.FechaFin, s.loc); err != nil {
			return nil, ErrFechaInvalida
		}
		if f.FechaInicio == "" {
			inicio = fin
		}
	}
	if fin.Before(inicio) {
		return nil, fmt.Errorf("fecha_fin anterior a fecha_inicio: %w", ErrFechaInvalida)
	}

	pedidos, err := s.pedidos.ListByRango(ctx, empresaID, inicio, fin.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	res := &dto.ReporteVentasResponse{
		FechaInicio:   inicio.Format(time.DateOnly),
		FechaFin:      fin.Format(time.DateOnly),
		NumPedidos:    len(pedidos),
		TotalVendido:  decimal.Zero,
		TotalEfectivo: decimal.Zero,
		TotalTarjeta:  decimal.Zero,
		Pedidos:       make([]dto.PedidoResponse, 0, len(pedidos)),
	}
	switch {
	case inicio.Equal(hoy) && fin.Equal(hoy):
		res.Titulo = "Ventas de hoy"
	case inicio.Equal(fin):
		res.Titulo = "Ventas del " + inicio.Format("02/01/2006")
	default:
		res.Titulo = fmt.Sprintf("Ventas del %s al %s", inicio.Format("02/01/2006"), fin.Format("02/01/2006"))
	}
	for i := range pedidos {
		p := &pedidos[i]
		res.TotalVendido = res.TotalVendido.Add(p.Total)
		switch p.MetodoPago {
		case model.MetodoEfectivo:
			res.TotalEfectivo = res.TotalEfectivo.Add(p.Total)
		case model.MetodoTarjeta:
			res.TotalTarjeta = res.TotalTarjeta.Add(p.Total)
		}
		res.Pedidos = append(res.Pedidos, pedidoToResponse(p, s.loc))
	}
	return res, nil
}

func (s *reporteService) Dashboard(ctx context.Context, empresaID uint, periodo string) (*dto.DashboardResponse, error) {
	hoy := s.medianoche(s.now())
	var (
		desde   time.Time
		paso    func(time.Time, int) time.Time
		n       int
		trunc   string
		etiq    string
		titulo  string
		grafica = "bar"
	)
	dias := func(t time.Time, i int) time.Time { return t.AddDate(0, 0, i) }
	switch periodo {
	case "", PeriodoHoy:
		periodo = PeriodoHoy
		desde, n, trunc, etiq, titulo, grafica = hoy, 24, repository.TruncHora, "15:04", "Ventas de hoy por hora", "line"
		paso = func(t time.Time, i int) time.Time { return t.Add(time.Duration(i) * time.Hour) }
	case PeriodoSemana:
		desde, n, trunc, etiq, titulo = hoy.AddDate(0, 0, -6), 7, repository.TruncDia, "02/01", "Ventas de los últimos 7 días"
		paso = dias
	case PeriodoMes:
		desde, n, trunc, etiq, titulo = hoy.AddDate(0, 0, -29), 30, repository.TruncDia, "02/01", "Ventas de los últimos 30 días"
		paso = dias
	default:
		return nil, fmt.Errorf("%w: %q", ErrPeriodoInvalido, periodo)
	}
	hasta := hoy.AddDate(0, 0, 1)

	filas, err := s.repo.VentasAgrupadas(ctx, empresaID, desde, hasta, trunc, s.loc.String())
	if err != nil {
		return nil, err
	}
	porClave := indexar(filas, claveBucket(trunc))

	res := &dto.DashboardResponse{
		Titulo:      titulo,
		Periodo:     periodo,
		TipoGrafica: grafica,
		Etiquetas:   make([]string, n),
		Datos:       make([]float64, n),
	}
	clave := claveBucket(trunc)
	for i := 0; i < n; i++ {
		b := paso(desde, i)
		res.Etiquetas[i] = b.Format(etiq)
		if f, ok := porClave[clave(b)]; ok {
			res.Datos[i] = f.Total.Round(2).InexactFloat64()
		}
	}
	return res, nil
}

func (s *reporteService) Resumen(ctx context.Context, empresaID uint, f dto.ResumenFiltro) (*dto.ResumenResponse, error) {
	hoy := s.medianoche(s.now())
	var (
		desde, hasta time.Time
		trunc, etiq  string
		paso         func(time.Time, int) time.Time
	)
	switch f.Agrupacion {
	case "", "dia":
		f.Agrupacion = "dia"
		if f.Periodos <= 0 || f.Periodos > 366 {
			f.Periodos = 30
		}
		desde, hasta = hoy.AddDate(0, 0, -(f.Periodos - 1)), hoy.AddDate(0, 0, 1)
		trunc, etiq = repository.TruncDia, time.DateOnly
		paso = func(t time.Time, i int) time.Time { return t.AddDate(0, 0, i) }
	case "mes":
		if f.Periodos <= 0 || f.Periodos > 60 {
			f.Periodos = 12
		}
		mes := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, s.loc)
		desde, hasta = mes.AddDate(0, -(f.Periodos - 1), 0), mes.AddDate(0, 1, 0)
		trunc, etiq = repository.TruncMes, "2006-01"
		paso = func(t time.Time, i int) time.Time { return t.AddDate(0, i, 0) }
	default:
		return nil, fmt.Errorf("%w: agrupacion %q", ErrPeriodoInvalido, f.Agrupacion)
	}

	filas, err := s.repo.VentasAgrupadas(ctx, empresaID, desde, hasta, trunc, s.loc.String())
	if err != nil {
		return nil, err
	}
	clave := claveBucket(trunc)
	porClave := indexar(filas, clave)

	res := &dto.ResumenResponse{
		Agrupacion: f.Agrupacion,
		Filas:      make([]dto.ResumenFila, 0, f.Periodos),
		Total:      decimal.Zero,
		Costo:      decimal.Zero,
		Margen:     decimal.Zero,
	}
	for i := 0; i < f.Periodos; i++ {
		b := paso(desde, i)
		fila := dto.ResumenFila{Periodo: b.Format(etiq), Total: decimal.Zero, Costo: decimal.Zero, Margen: decimal.Zero}
		if g, ok := porClave[clave(b)]; ok {
			fila.NumPedidos = g.NumPedidos
			fila.Total = g.Total
			fila.Costo = g.Costo
			fila.Margen = g.Total.Sub(g.Costo)
		}
		res.Filas = append(res.Filas, fila)
		res.NumPedidos += fila.NumPedidos
		res.Total = res.Total.Add(fila.Total)
		res.Costo = res.Costo.Add(fila.Costo)
	}
	res.Margen = res.Total.Sub(res.Costo)
	return res, nil
}

func (s *reporteService) medianoche(t time.Time) time.Time {
	l := t.In(s.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, s.loc)
}

// claveBucket keys a bucket by its wall-clock fields. Rows from the database
// carry local wall-clock time in a UTC value; buckets carry real local times.
// Formatting both with their own location yields the same key.
func claveBucket(trunc string) func(time.Time) string {
	layout := "2006-01-02"
	switch trunc {
	case repository.TruncHora:
		layout = "2006-01-02 15"
	case repository.TruncMes:
		layout = "2006-01"
	}
	return func(t time.Time) string { return t.Format(layout) }
}

func indexar(filas []repository.FilaAgrupada, clave func(time.Time) string) map[string]repository.FilaAgrupada {
	m := make(map[string]repository.FilaAgrupada, len(filas))
	for _, f := range filas {
		m[clave(f.Periodo)] = f
	}
	return m
}
