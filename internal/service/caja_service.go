package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/metrics"
	"github.com/KilOS-pos/pos-carniceria/internal/model"
	"github.com/KilOS-pos/pos-carniceria/internal/repository"
	"github.com/KilOS-pos/pos-carniceria/internal/ticket"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var errLiquidacionDesfasada = errors.New("liquidación desfasada")

// NotificadorArqueo receives every committed close, e.g. to mail its PDF.
type NotificadorArqueo interface {
	EnqueueArqueoEmail(ctx context.Context, empresa string, a dto.ArqueoResponse) error
}

type CajaService interface {
	RegistrarRetiro(ctx context.Context, ses Sesion, req dto.RetiroRequest) (*dto.RegistrarRetiroResponse, error)
	RetirosPendientes(ctx context.Context, empresaID uint) ([]dto.RetiroResponse, error)
	Preview(ctx context.Context, ses Sesion) (*dto.ArqueoPreviewResponse, error)
	Cerrar(ctx context.Context, ses Sesion, req dto.CerrarCajaRequest) (*dto.CerrarCajaResponse, error)
	Historial(ctx context.Context, empresaID uint, page, limit int) (*dto.ArqueoListResponse, error)
	ObtenerArqueo(ctx context.Context, empresaID, id uint) (*dto.ArqueoResponse, error)
}

// CajaOption tunes a CajaService.
type CajaOption func(*cajaService)

// WithReloj replaces time.Now as the source of the close cutoff.
func WithReloj(now func() time.Time) CajaOption {
	return func(s *cajaService) { s.now = now }
}

// WithReintentos bounds how many times a close that lost a serialization
// race is retried.
func WithReintentos(n int) CajaOption {
	return func(s *cajaService) {
		if n >= 0 {
			s.reintentos = n
		}
	}
}

func WithNotificador(n NotificadorArqueo) CajaOption {
	return func(s *cajaService) { s.notificador = n }
}

type cajaService struct {
	repo        repository.CajaRepository
	usuarios    repository.UsuarioRepository
	impresion   ImpresionService
	membrete    *Membrete
	notificador NotificadorArqueo
	now         func() time.Time
	reintentos  int
}

func NewCajaService(
	repo repository.CajaRepository,
	usuarios repository.UsuarioRepository,
	impresion ImpresionService,
	membrete *Membrete,
	opts ...CajaOption,
) CajaService {
	s := &cajaService{
		repo:       repo,
		usuarios:   usuarios,
		impresion:  impresion,
		membrete:   membrete,
		now:        time.Now,
		reintentos: 3,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ── Retiros ──────────────────────────────────────────────────────────────────

func (s *cajaService) RegistrarRetiro(ctx context.Context, ses Sesion, req dto.RetiroRequest) (*dto.RegistrarRetiroResponse, error) {
	if !req.Monto.IsPositive() || !req.Monto.Equal(req.Monto.Round(2)) {
		return nil, ErrMontoInvalido
	}
	r := &model.Retiro{
		EmpresaID: ses.EmpresaID,
		Monto:     req.Monto,
		Concepto:  req.Concepto,
		UsuarioID: &ses.UsuarioID,
	}
	if err := s.repo.CreateRetiro(ctx, r); err != nil {
		return nil, err
	}

	res := &dto.RegistrarRetiroResponse{Retiro: retiroToResponse(r, s.membrete.Loc())}
	enc, err := s.membrete.Para(ctx, ses.EmpresaID)
	if err != nil {
		log.Error().Err(err).Uint("retiro_id", r.ID).Msg("caja: membrete no disponible")
		return res, nil
	}
	res.TicketTexto = ticket.Retiro(enc, r)
	res.Impresion = s.impresion.Enviar(ctx, res.TicketTexto)
	return res, nil
}

func (s *cajaService) RetirosPendientes(ctx context.Context, empresaID uint) ([]dto.RetiroResponse, error) {
	retiros, err := s.repo.ListRetirosPendientes(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RetiroResponse, 0, len(retiros))
	for i := range retiros {
		out = append(out, retiroToResponse(&retiros[i], s.membrete.Loc()))
	}
	return out, nil
}

// ── Preview ──────────────────────────────────────────────────────────────────
// Read-only snapshot of everything not yet attached to an Arqueo.

func (s *cajaService) Preview(ctx context.Context, ses Sesion) (*dto.ArqueoPreviewResponse, error) {
	ahora := s.now()
	tot, err := s.repo.TotalesPendientes(ctx, nil, ses.EmpresaID, ahora)
	if err != nil {
		return nil, err
	}
	esperado := tot.VentasEfectivo.Sub(tot.Retiros)
	fecha := ahora.In(s.membrete.Loc())

	res := &dto.ArqueoPreviewResponse{
		Fecha:            fecha.Format(time.DateOnly),
		VentasEfectivo:   tot.VentasEfectivo,
		VentasTarjeta:    tot.VentasTarjeta,
		TotalVentas:      tot.VentasEfectivo.Add(tot.VentasTarjeta),
		Retiros:          tot.Retiros,
		EfectivoEsperado: esperado,
		NumPedidos:       tot.NumPedidos,
		NumRetiros:       tot.NumRetiros,
	}
	if enc, err := s.membrete.Para(ctx, ses.EmpresaID); err == nil {
		res.TicketTexto = ticket.Arqueo(enc, ticket.Cierre{
			Fecha:            fecha,
			CerradoPor:       ses.Username,
			VentasEfectivo:   tot.VentasEfectivo,
			VentasTarjeta:    tot.VentasTarjeta,
			Retiros:          tot.Retiros,
			EfectivoEsperado: esperado,
		})
	}
	return res, nil
}

// ── Cerrar ───────────────────────────────────────────────────────────────────
//   1. Parse monto_contado (no state change on failure).
//   2. Fix the cutoff, then in one REPEATABLE READ tx: aggregate pending rows
//      (arqueo_id IS NULL AND created_at <= corte), create the Arqueo, attach
//      the same predicate's rows to it.
//   3. A serialization failure re-runs the whole tx with a new cutoff.

func (s *cajaService) Cerrar(ctx context.Context, ses Sesion, req dto.CerrarCajaRequest) (res *dto.CerrarCajaResponse, err error) {
	ctx, span := tracer.Start(ctx, "caja.Cerrar", trace.WithAttributes(
		attribute.Int("empresa.id", int(ses.EmpresaID)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	contado, err := parseMonto(req.MontoContado.String())
	if err != nil {
		return nil, err
	}

	var arqueo *model.Arqueo
	for intento := 0; ; intento++ {
		arqueo, err = s.cerrarUnaVez(ctx, ses, contado)
		if err == nil {
			break
		}
		if !repository.IsSerializationConflict(err) && !errors.Is(err, errLiquidacionDesfasada) {
			return nil, err
		}
		if intento >= s.reintentos {
			return nil, ErrCierreConcurrente
		}
		log.Warn().Err(err).Int("intento", intento+1).Uint("empresa_id", ses.EmpresaID).Msg("caja: cierre en conflicto, reintentando")
	}

	metrics.CierresCaja.Inc()
	span.SetAttributes(attribute.Int("arqueo.id", int(arqueo.ID)), attribute.Int("arqueo.pedidos", arqueo.NumPedidos))
	if cerrador, uerr := s.usuarios.FindByID(ctx, ses.UsuarioID); uerr == nil {
		arqueo.CerradoPor = cerrador
	}

	res = &dto.CerrarCajaResponse{Arqueo: arqueoToResponse(arqueo, s.membrete.Loc())}
	enc, err := s.membrete.Para(ctx, ses.EmpresaID)
	if err != nil {
		log.Error().Err(err).Uint("arqueo_id", arqueo.ID).Msg("caja: membrete no disponible")
		return res, nil
	}
	cerradoPor := ses.Username
	if arqueo.CerradoPor != nil {
		cerradoPor = arqueo.CerradoPor.Username
	}
	res.TicketTexto = ticket.Arqueo(enc, ticket.Cierre{
		Fecha:            arqueo.Fecha,
		CerradoPor:       cerradoPor,
		VentasEfectivo:   arqueo.VentasEfectivo,
		VentasTarjeta:    arqueo.VentasTarjeta,
		Retiros:          arqueo.Retiros,
		EfectivoEsperado: arqueo.EfectivoEsperado,
		MontoContado:     arqueo.MontoContado,
		Diferencia:       arqueo.Diferencia,
	})
	res.Impresion = s.impresion.Enviar(ctx, res.TicketTexto)

	if s.notificador != nil {
		if nerr := s.notificador.EnqueueArqueoEmail(context.WithoutCancel(ctx), enc.Empresa, res.Arqueo); nerr != nil {
			log.Error().Err(nerr).Uint("arqueo_id", arqueo.ID).Msg("caja: no se pudo encolar el correo del arqueo")
		}
	}
	return res, nil
}

func (s *cajaService) cerrarUnaVez(ctx context.Context, ses Sesion, contado decimal.Decimal) (*model.Arqueo, error) {
	corte := s.now()
	local := corte.In(s.membrete.Loc())
	var arqueo *model.Arqueo

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead}
	err := runTxOpts(ctx, s.repo.DB(), opts, func(tx *gorm.DB) error {
		tot, err := s.repo.TotalesPendientes(ctx, tx, ses.EmpresaID, corte)
		if err != nil {
			return err
		}
		esperado := tot.VentasEfectivo.Sub(tot.Retiros)
		diferencia := contado.Sub(esperado)

		a := &model.Arqueo{
			EmpresaID:        ses.EmpresaID,
			Fecha:            time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			VentasEfectivo:   tot.VentasEfectivo,
			VentasTarjeta:    tot.VentasTarjeta,
			Retiros:          tot.Retiros,
			EfectivoEsperado: esperado,
			MontoContado:     contado,
			Diferencia:       diferencia,
			Clasificacion:    clasificarDiferencia(diferencia),
			NumPedidos:       tot.NumPedidos,
			NumRetiros:       tot.NumRetiros,
			CerradoPorID:     &ses.UsuarioID,
		}
		if err := s.repo.CreateArqueoTx(ctx, tx, a); err != nil {
			return err
		}

		pedidos, retiros, err := s.repo.LiquidarTx(ctx, tx, ses.EmpresaID, a.ID, corte)
		if err != nil {
			return err
		}
		if int(pedidos) != tot.NumPedidos || int(retiros) != tot.NumRetiros {
			// The snapshot and the settlement disagree: another close got there first.
			return fmt.Errorf("caja: liquidados %d/%d, esperados %d/%d: %w",
				pedidos, retiros, tot.NumPedidos, tot.NumRetiros, errLiquidacionDesfasada)
		}
		arqueo = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arqueo, nil
}

// ── Historial ────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, empresaID uint, page, limit int) (*dto.ArqueoListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	arqueos, total, err := s.repo.ListArqueos(ctx, empresaID, page, limit)
	if err != nil {
		return nil, err
	}
	res := &dto.ArqueoListResponse{Data: make([]dto.ArqueoResponse, 0, len(arqueos)), Total: total, Page: page, Limit: limit}
	for i := range arqueos {
		res.Data = append(res.Data, arqueoToResponse(&arqueos[i], s.membrete.Loc()))
	}
	return res, nil
}

func (s *cajaService) ObtenerArqueo(ctx context.Context, empresaID, id uint) (*dto.ArqueoResponse, error) {
	a, err := s.repo.FindArqueo(ctx, empresaID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("arqueo %d: %w", id, ErrNoEncontrado)
		}
		return nil, err
	}
	r := arqueoToResponse(a, s.membrete.Loc())
	return &r, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// clasificarDiferencia returns "exacto" | "sobrante" | "faltante", judged at
// cent precision.
func clasificarDiferencia(d decimal.Decimal) string {
	switch d.Round(2).Sign() {
	case 0:
		return "exacto"
	case 1:
		return "sobrante"
	default:
		return "faltante"
	}
}
