package worker

// email_worker.go
// Processes jobs from QueueEmail: renders the till-close PDF and mails it.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/KilOS-pos/pos-carniceria/internal/dto"
	"github.com/KilOS-pos/pos-carniceria/internal/infra"

	"github.com/rs/zerolog/log"
)

// ArqueoEmailPayload is the job envelope sent to QueueEmail.
type ArqueoEmailPayload struct {
	To      string             `json:"to"`
	Empresa string             `json:"empresa"`
	Arqueo  dto.ArqueoResponse `json:"arqueo"`
}

type Mailer interface {
	Enviar(to, subject, body, adjunto string) error
}

type EmailWorker struct {
	mailer      Mailer
	storagePath string
	renderPDF   func(empresa string, a dto.ArqueoResponse, storagePath string) (string, error)
}

func NewEmailWorker(mailer Mailer, storagePath string) *EmailWorker {
	return &EmailWorker{mailer: mailer, storagePath: storagePath, renderPDF: infra.GenerateArqueoPDF}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var p ArqueoEmailPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if p.To == "" {
		log.Warn().Uint("arqueo_id", p.Arqueo.ID).Msg("email_worker: empty recipient, skipping")
		return nil
	}

	path, err := w.renderPDF(p.Empresa, p.Arqueo, w.storagePath)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s: cierre de caja %s", p.Empresa, p.Arqueo.Fecha)
	body := fmt.Sprintf("Cierre de caja #%d (%s).\nEfectivo esperado: $%s\nMonto contado: $%s\nDiferencia: $%s (%s)\n",
		p.Arqueo.ID, p.Arqueo.Fecha,
		p.Arqueo.EfectivoEsperado.StringFixed(2),
		p.Arqueo.MontoContado.StringFixed(2),
		p.Arqueo.Diferencia.StringFixed(2),
		p.Arqueo.Clasificacion)

	if err := w.mailer.Enviar(p.To, subject, body, path); err != nil {
		return fmt.Errorf("email_worker: send: %w", err)
	}
	log.Info().Str("to", p.To).Uint("arqueo_id", p.Arqueo.ID).Msg("email_worker: arqueo sent")
	return nil
}
