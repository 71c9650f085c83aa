package api

import (
	"net/http"

	"github.com/rpupo63/portfolio-backend/auth"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder Responder
	logger    zerolog.Logger
	gate      *auth.Gate
	tokens    *auth.TokenIssuer
}

func newAdminHandler(gate *auth.Gate, tokens *auth.TokenIssuer) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder: NewResponder(logger),
		logger:    logger,
		gate:      gate,
		tokens:    tokens,
	}
}

// login opens the admin session
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Admin password"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse "Incorrect password"
// @Router /admin/login [post]
func (h adminHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewInvalidFieldError("password", "cannot be blank"))
			return
		}

		if !h.gate.Login(req.Password) {
			h.responder.WriteError(w, errs.NewWrongPasswordError())
			return
		}

		token, expiresAt, err := h.tokens.Issue()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, LoginResponse{Token: token, ExpiresAt: expiresAt, IsAdmin: true})
	}
}

// logout closes the admin session, invalidating every issued token
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Success 200 {object} AdminStatusResponse
// @Router /admin/logout [post]
func (h adminHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.gate.Logout()
		h.responder.WriteJSON(w, AdminStatusResponse{IsAdmin: false})
	}
}

// status reports whether the admin session is open
// @Summary Admin status
// @Tags Admin
// @Produce json
// @Success 200 {object} AdminStatusResponse
// @Router /admin/status [get]
func (h adminHandler) status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, AdminStatusResponse{IsAdmin: h.gate.IsAdmin()})
	}
}
