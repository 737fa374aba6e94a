package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/KilOS-pos/pos-carniceria/internal/infra"
	"github.com/KilOS-pos/pos-carniceria/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// corte is the ESC/POS full cut appended to every ticket.
var corte = []byte{0x1d, 0x56, 0x00}

var codificaciones = map[string]*charmap.Charmap{
	"cp850":        charmap.CodePage850,
	"cp437":        charmap.CodePage437,
	"cp858":        charmap.CodePage858,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
}

func codificacion(nombre string) (*charmap.Charmap, error) {
	cm, ok := codificaciones[strings.ToLower(nombre)]
	if !ok {
		return nil, fmt.Errorf("codificación %q no soportada", nombre)
	}
	return cm, nil
}

// codificar maps text to the printer code page; runes it cannot represent
// become '?'.
func codificar(cm *charmap.Charmap, texto string) []byte {
	out := make([]byte, 0, len(texto)+len(corte))
	for _, r := range texto {
		b, ok := cm.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return append(out, corte...)
}

// Dispositivo receives the raw ESC/POS bytes.
type Dispositivo interface {
	Escribir(data []byte) error
}

// archivo writes each ticket to a device node or spool file, one at a time.
type archivo struct {
	mu   sync.Mutex
	path string
}

func (a *archivo) Escribir(data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.OpenFile(a.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func nuevoPuente(cm *charmap.Charmap, disp Dispositivo) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())

	r.POST("/print", func(c *gin.Context) {
		var req infra.PrintRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.TicketText == "" {
			c.JSON(http.StatusBadRequest, infra.PrintResponse{Status: "error", Message: "No se recibió texto"})
			return
		}
		if err := disp.Escribir(codificar(cm, req.TicketText)); err != nil {
			log.Error().Err(err).Msg("puente: write failed")
			c.JSON(http.StatusInternalServerError, infra.PrintResponse{Status: "error", Message: "Error de Impresión: " + err.Error()})
			return
		}
		log.Info().Int("bytes", len(req.TicketText)).Msg("puente: ticket printed")
		c.JSON(http.StatusOK, infra.PrintResponse{Status: "success", Message: "Ticket impreso"})
	})
	return r
}
