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

type RecoveryRequestHandler struct {
	RecoveryService *service.RecoveryService
}

// ServeHTTP godoc
//
//	@Summary		Recovery Request Endpoint
//	@Description	Send a password-reset email. Responds success whether or not the address has an account.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.RecoveryRequest	true	"Address to recover"
//	@Success		200		{object}	lettresdk.SuccessResponse	"success"
//	@Failure		400		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Router			/api/compte/recovery [post].
func (h *RecoveryRequestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.RecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	err := h.RecoveryService.Request(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "email is required",
			})
		case errors.Is(err, service.ErrMailDelivery):
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "mail_delivery_error",
				ErrorDescription: "Failed to send the recovery email",
			})
		default:
			log.Error("recovery request failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to issue the recovery link",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lettresdk.SuccessResponse{Success: true})
}

type NewPasswordHandler struct {
	RecoveryService *service.RecoveryService
}

// ServeHTTP godoc
//
//	@Summary		Password Reset Endpoint
//	@Description	Finalize a password reset. Consumes the recovery token and writes the new password atomically.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.NewPasswordRequest	true	"Token fingerprint and new password"
//	@Success		200		{object}	lettresdk.SuccessResponse		"success"
//	@Failure		400		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		404		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse			"error, error_description"
//	@Router			/api/compte/nouveau-mot-de-passe [post].
func (h *NewPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.NewPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	err := h.RecoveryService.Reset(ctx, req.TokenHash, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "token_hash and password are required",
			})
		case errors.Is(err, service.ErrRecoveryInvalid), errors.Is(err, service.ErrRecoveryExpired):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Recovery link is invalid or expired",
			})
		default:
			log.Error("password reset failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to reset the password",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, lettresdk.SuccessResponse{Success: true})
}
