package api

import (
	"context"
	"net/http"

	"github.com/rpupo63/portfolio-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ContactSender delivers contact form messages.
type ContactSender interface {
	SendContact(ctx context.Context, msg models.ContactMessage) error
}

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	sender    ContactSender
}

func newContactHandler(sender ContactSender) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		sender:    sender,
	}
}

// sendMessage forwards a contact form submission
// @Summary Send contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body models.ContactMessage true "Contact form"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse "Invalid form"
// @Failure 502 {object} ErrorResponse "Email provider unreachable"
// @Router /contact [post]
func (h contactHandler) sendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg models.ContactMessage
		if err := decodeJSON(r, &msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validateContactMessage(&msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.sender.SendContact(r.Context(), msg); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("from", msg.Email).Msg("contact message sent")
		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "Message sent successfully! I'll get back to you soon.",
		})
	}
}
