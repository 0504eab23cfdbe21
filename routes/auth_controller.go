package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/bcrypt"

	"github.com/openpulse/openpulse/app"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/httpx"
	"github.com/openpulse/openpulse/model"
)

var validate = validator.New()

type registerPayload struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := registerPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.BadRequest(w, r, "register.parse_body")
			return
		}
		payload.Name = strings.TrimSpace(payload.Name)

		if err = validatePayload(payload); err != nil {
			httpx.RenderError(w, r, "register.validate", err)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.RenderError(w, r, "register.hash", err)
			return
		}

		user := model.User{
			ID:           uuid.Must(uuid.NewV4()).String(),
			Name:         payload.Name,
			Email:        payload.Email,
			PasswordHash: string(hash),
			CreatedAt:    time.Now(),
		}
		err = app.Store.CreateUser(r.Context(), user)
		if err != nil {
			httpx.RenderError(w, r, "register.save", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message": "account created",
		})
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := loginPayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.BadRequest(w, r, "login.parse_body")
			return
		}
		if err = validatePayload(payload); err != nil {
			httpx.RenderError(w, r, "login.validate", err)
			return
		}

		user, err := app.Store.UserByEmail(r.Context(), payload.Email)
		if err != nil {
			if core.KindOf(err) == core.KindNotFound {
				httpx.Status(w, r, http.StatusUnauthorized, "login.lookup", "invalid email or password")
			} else {
				httpx.RenderError(w, r, "login.lookup", err)
			}
			return
		}
		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password))
		if err != nil {
			httpx.Status(w, r, http.StatusUnauthorized, "login.password", "invalid email or password")
			return
		}

		claims := map[string]any{"user_id": user.ID}
		jwtauth.SetIssuedNow(claims)
		jwtauth.SetExpiryIn(claims, app.TokenTTL)
		_, token, err := app.TokenAuth.Encode(claims)
		if err != nil {
			httpx.RenderError(w, r, "login.token", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"token": token,
			"user": map[string]string{
				"name":  user.Name,
				"email": user.Email,
			},
		})
	}
}

func validatePayload(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var result *multierror.Error
	for _, fe := range verrs {
		result = multierror.Append(result, &core.Error{
			Kind: core.KindValidation, Code: core.CodeInvalidPayload,
			Field:   strings.ToLower(fe.Field()),
			Message: "failed constraint " + fe.Tag(),
		})
	}
	return result.ErrorOrNil()
}
