package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/pkg/httpx"
	"github.com/lettrehq/lettre/pkg/lettresdk"
	"github.com/lettrehq/lettre/pkg/slogx"
)

type SendMailHandler struct {
	SenderService *service.SenderService
}

// ServeHTTP godoc
//
//	@Summary		Sender Confirmation Dispatch Endpoint
//	@Description	Send (or resend) the confirmation email for a sender address. With renvoi set, a fresh 24h token is minted for the sender identified by id; otherwise the supplied token is mailed as-is.
//	@Tags			Senders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.SendMailRequest	true	"Send-mail request"
//	@Success		200		{object}	lettresdk.SendMailResponse	"success"
//	@Failure		400		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/expediteur/send-mail [post].
func (h *SendMailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.SendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	if req.Email == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "email is required",
		})
		return
	}

	_, err := h.SenderService.SendConfirmation(ctx, service.SendConfirmationParams{
		FamilyID: httpx.FamilyIDFromContext(ctx),
		Email:    req.Email,
		Name:     req.Nom,
		Token:    req.Token,
		Resend:   req.Renvoi,
		SenderID: req.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "id is required when renvoi is set",
			})
		case errors.Is(err, service.ErrMissingToken):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_token",
				ErrorDescription: "token is required unless renvoi is set",
			})
		case errors.Is(err, service.ErrSenderNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No sender matches the given id and email",
			})
		case errors.Is(err, service.ErrMailDelivery):
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "mail_delivery_error",
				ErrorDescription: "Failed to send the confirmation email",
			})
		default:
			log.Error("send-mail failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to persist the confirmation token",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lettresdk.SendMailResponse{Success: true})
}
