package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PrintRequest is the body of POST /print on the local print bridge.
type PrintRequest struct {
	TicketText string `json:"ticket_text"`
}

// PrintResponse is what the bridge answers; Status is "success" or "error".
type PrintResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

var (
	// ErrPuenteRechazo marks a well-formed answer from the bridge that was not a success.
	ErrPuenteRechazo = errors.New("puente de impresión rechazó el ticket")
	// ErrPuenteRespuestaInvalida marks a body that is not the bridge's JSON.
	ErrPuenteRespuestaInvalida = errors.New("respuesta ilegible del puente de impresión")
)

// PrintBridgeClient talks to the bridge running next to the thermal printer.
// Calls go through the circuit breaker when one is set.
type PrintBridgeClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewPrintBridgeClient(baseURL string, timeout time.Duration, cb *CircuitBreaker) *PrintBridgeClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PrintBridgeClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Imprimir succeeds only on HTTP 200 with {"status":"success"}.
func (c *PrintBridgeClient) Imprimir(ctx context.Context, texto string) error {
	if c.cb == nil {
		return c.enviar(ctx, texto)
	}
	return c.cb.Execute(func() error { return c.enviar(ctx, texto) })
}

// Breaker exposes the breaker for health reporting; nil when unset.
func (c *PrintBridgeClient) Breaker() *CircuitBreaker {
	if c == nil {
		return nil
	}
	return c.cb
}

func (c *PrintBridgeClient) enviar(ctx context.Context, texto string) error {
	body, err := json.Marshal(PrintRequest{TicketText: texto})
	if err != nil {
		return fmt.Errorf("puente: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/print", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("puente: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("puente: no disponible: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("puente: leer respuesta %d: %w", resp.StatusCode, err)
	}
	var result PrintResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("puente: respondió %d: %w: %w", resp.StatusCode, ErrPuenteRespuestaInvalida, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("puente: respondió %d %s: %w", resp.StatusCode, result.Message, ErrPuenteRechazo)
	}
	if result.Status != "success" {
		return fmt.Errorf("puente: status %q: %w", result.Status, ErrPuenteRechazo)
	}
	return nil
}
