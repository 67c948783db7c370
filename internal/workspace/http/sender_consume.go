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

type ConsumeTokenHandler struct {
	SenderService *service.SenderService
}

// ServeHTTP godoc
//
//	@Summary		Sender Token Consumption Endpoint
//	@Description	Finalize a verified sender by destroying its confirmation token. All three coordinates must match a verified sender; a token that was already consumed or never verified yields the same 404.
//	@Tags			Senders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.ConsumeTokenRequest	true	"Consume-token request"
//	@Success		200		{object}	lettresdk.ConsumeTokenResponse	"success, count"
//	@Failure		400		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		404		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Router			/api/expediteur/consume-token [post].
func (h *ConsumeTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.ConsumeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	count, err := h.SenderService.ConsumeToken(ctx, req.Token, req.Email, req.FamilleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "token, email and famille_id are required",
			})
		case errors.Is(err, service.ErrSenderNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No verified sender matches the given token",
			})
		default:
			log.Error("consume-token failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to consume the token",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lettresdk.ConsumeTokenResponse{Success: true, Count: count})
}
