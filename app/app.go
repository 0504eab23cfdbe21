package app

import (
	"github.com/go-chi/jwtauth/v5"

	"github.com/openpulse/openpulse/config"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/store"
)

type App struct {
	Store       store.Store
	TokenAuth   *jwtauth.JWTAuth
	Definitions *core.DefinitionValidator
	config.Config
}
