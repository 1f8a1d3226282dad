package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stoik/tempmail/internal/mock"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	interval := 30 * time.Second
	if v := os.Getenv("GENERATE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal().Err(err).Str("value", v).Msg("invalid GENERATE_INTERVAL")
		}
		interval = d
	}

	server := mock.NewServer()

	// Deliver random messages to every mailbox on a fixed interval
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				if n := server.GenerateMessages(); n > 0 {
					log.Info().Int("count", n).Msg("generated mock messages")
				}
			}
		}()
	}

	r := mock.NewRouter(server, gin.Logger())

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("addr", addr).Msg("starting mock temp-mail provider (mail.tm at /mailtm, GuerrillaMail at /guerrilla/ajax.php)")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("mock server stopped")
	}
}
