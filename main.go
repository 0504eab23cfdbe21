package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/openpulse/openpulse/app"
	"github.com/openpulse/openpulse/config"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/database"
	"github.com/openpulse/openpulse/log"
	"github.com/openpulse/openpulse/routes"
	"github.com/openpulse/openpulse/store"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	app := app.App{
		Store:       store.NewSQL(db),
		TokenAuth:   jwtauth.New("HS256", []byte(cfg.TokenSecret), nil),
		Definitions: core.NewDefinitionValidator(),
		Config:      cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
