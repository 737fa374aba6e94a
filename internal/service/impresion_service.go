package service

import (
	"context"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Impresora sends a finished receipt to the print bridge.
type Impresora interface {
	Imprimir(ctx context.Context, texto string) error
}

// ColaImpresion keeps a receipt for a later retry.
type ColaImpresion interface {
	EnqueueImpresion(ctx context.Context, texto string) error
}

// ImpresionService is the best-effort side channel used after a commit. It
// never returns an error: the outcome goes into the response instead.
type ImpresionService interface {
	Enviar(ctx context.Context, texto string) dto.ImpresionResponse
}

type impresionService struct {
	impresora Impresora
	cola      ColaImpresion // nil when retries are disabled
}

func NewImpresionService(impresora Impresora, cola ColaImpresion) ImpresionService {
	return &impresionService{impresora: impresora, cola: cola}
}

func (s *impresionService) Enviar(ctx context.Context, texto string) dto.ImpresionResponse {
	err := s.impresora.Imprimir(ctx, texto)
	if err == nil {
		metrics.Impresiones.WithLabelValues("ok").Inc()
		return dto.ImpresionResponse{Impreso: true}
	}

	log.Warn().Err(err).Msg("impresion: puente no disponible")
	aviso := ErrImpresoraNoDisponible.Error() + ". Asegúrate de que el programa puente esté en ejecución."
	res := dto.ImpresionResponse{Aviso: &aviso}

	if s.cola == nil {
		metrics.Impresiones.WithLabelValues("fallo").Inc()
		return res
	}
	if qerr := s.cola.EnqueueImpresion(context.WithoutCancel(ctx), texto); qerr != nil {
		log.Error().Err(qerr).Msg("impresion: no se pudo encolar el reintento")
		metrics.Impresiones.WithLabelValues("fallo").Inc()
		return res
	}
	metrics.Impresiones.WithLabelValues("encolado").Inc()
	res.Encolado = true
	return res
}
