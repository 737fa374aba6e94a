package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// ImpresionPayload is the job body on QueueImpresion.
type ImpresionPayload struct {
	TicketText string `json:"ticket_text"`
}

type Impresora interface {
	Imprimir(ctx context.Context, texto string) error
}

// PrintWorker re-sends receipts that failed to print at checkout time.
type PrintWorker struct {
	impresora Impresora
}

func NewPrintWorker(impresora Impresora) *PrintWorker {
	return &PrintWorker{impresora: impresora}
}

func (w *PrintWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p ImpresionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("print_worker: invalid payload: %w", err)
	}
	if p.TicketText == "" {
		log.Warn().Msg("print_worker: empty ticket, skipping")
		return nil
	}
	if err := w.impresora.Imprimir(ctx, p.TicketText); err != nil {
		return err
	}
	log.Info().Msg("print_worker: ticket printed on retry")
	return nil
}
