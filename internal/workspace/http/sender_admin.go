package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/httpx"
	"github.com/lettrehq/lettre/pkg/lettresdk"
	"github.com/lettrehq/lettre/pkg/slogx"
)

type CreateSenderHandler struct {
	SenderService *service.SenderService
}

// ServeHTTP godoc
//
//	@Summary		Sender Registration Endpoint
//	@Description	Register a sender address for the authenticated family, mint its first confirmation token and dispatch the confirmation email.
//	@Tags			Senders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.CreateSenderRequest	true	"Sender to register"
//	@Success		201		{object}	lettresdk.SenderView			"id, email, nom, statut, expires_at"
//	@Failure		400		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		409		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/expediteur [post].
func (h *CreateSenderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.CreateSenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	sender, err := h.SenderService.CreateSender(ctx, httpx.FamilyIDFromContext(ctx), req.Email, req.Nom)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "email is required",
			})
		case errors.Is(err, store.ErrAlreadyExists):
			httpx.WriteJSON(w, http.StatusConflict, lettresdk.ErrorResponse{
				Error:            "already_exists",
				ErrorDescription: "This sender address is already registered",
			})
		case errors.Is(err, service.ErrMailDelivery):
			// The sender row exists; the confirmation mail did not go out.
			// Report the delivery failure, the caller retries via renvoi.
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "mail_delivery_error",
				ErrorDescription: "Sender registered but the confirmation email failed",
			})
		default:
			log.Error("sender creation failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to register the sender",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, senderView(sender))
}

type ListSendersHandler struct {
	SenderService *service.SenderService
}

// ServeHTTP godoc
//
//	@Summary		Sender Listing Endpoint
//	@Description	List the authenticated family's sender addresses, newest first.
//	@Tags			Senders
//	@Produce		json
//	@Success		200	{array}		lettresdk.SenderView	"senders"
//	@Failure		500	{object}	lettresdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/expediteur [get].
func (h *ListSendersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	senders, err := h.SenderService.ListSenders(ctx, httpx.FamilyIDFromContext(ctx))
	if err != nil {
		log.Error("sender listing failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
			Error:            "persistence_error",
			ErrorDescription: "Failed to list senders",
		})
		return
	}

	views := make([]lettresdk.SenderView, 0, len(senders))
	for _, s := range senders {
		views = append(views, senderView(s))
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

func senderView(s domain.Sender) lettresdk.SenderView {
	v := lettresdk.SenderView{
		ID:     s.ID,
		Email:  s.Email,
		Nom:    s.Name,
		Statut: string(s.Status),
	}
	if s.TokenExpiresAt != nil {
		v.ExpiresAt = s.TokenExpiresAt.Unix()
	}
	return v
}
