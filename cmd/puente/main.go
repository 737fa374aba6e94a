// cmd/puente: servicio local que recibe tickets por HTTP y los manda a la
// impresora térmica. Corre en la PC de la caja, junto a la impresora.
package main

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	viper.AutomaticEnv()
	viper.SetDefault("PUENTE_ADDR", "127.0.0.1:5000")
	viper.SetDefault("PUENTE_LOCK_ADDR", "127.0.0.1:5001")
	viper.SetDefault("PUENTE_DEVICE", "/dev/usb/lp0")
	viper.SetDefault("PUENTE_ENCODING", "cp850")

	// A second instance would fight over the printer; the lock port keeps one.
	lock, err := net.Listen("tcp", viper.GetString("PUENTE_LOCK_ADDR"))
	if err != nil {
		log.Info().Msg("another bridge instance is already running, exiting")
		return
	}
	defer lock.Close()

	cm, err := codificacion(viper.GetString("PUENTE_ENCODING"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid PUENTE_ENCODING")
	}

	gin.SetMode(gin.ReleaseMode)
	r := nuevoPuente(cm, &archivo{path: viper.GetString("PUENTE_DEVICE")})

	addr := viper.GetString("PUENTE_ADDR")
	log.Info().Str("addr", addr).Str("device", viper.GetString("PUENTE_DEVICE")).Msg("print bridge listening")
	srv := &http.Server{Addr: addr, Handler: r, ReadTimeout: 10 * time.Second, WriteTimeout: 30 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
