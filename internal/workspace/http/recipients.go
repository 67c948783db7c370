package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/pkg/httpx"
	"github.com/lettrehq/lettre/pkg/lettresdk"
	"github.com/lettrehq/lettre/pkg/slogx"
)

type GetRecipientHandler struct {
	RecipientService *service.RecipientService
}

// ServeHTTP godoc
//
//	@Summary		Recipient Lookup Endpoint
//	@Description	Resolve an identifier against team members first, then pending invitations, into the uniform recipient view.
//	@Tags			Team
//	@Produce		json
//	@Param			id	path		string					true	"Member or invitation id"
//	@Success		200	{object}	lettresdk.RecipientView	"id, email, role, kind"
//	@Failure		404	{object}	lettresdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	lettresdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/team/recipients/{id} [get].
func (h *GetRecipientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	recipient, err := h.RecipientService.Resolve(ctx, httpx.FamilyIDFromContext(ctx), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecipientNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No member or pending invitation matches this id",
			})
		default:
			log.Error("recipient lookup failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to resolve the recipient",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, recipientView(recipient))
}

type UpdateRecipientRoleHandler struct {
	RecipientService *service.RecipientService
}

// ServeHTTP godoc
//
//	@Summary		Recipient Role Update Endpoint
//	@Description	Assign a new role to a recipient. The write targets whichever kind the id resolved to; a member update never touches invitation rows and vice versa.
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Member or invitation id"
//	@Param			request	body		lettresdk.UpdateRoleRequest	true	"New role"
//	@Success		200		{object}	lettresdk.RecipientView		"id, email, role, kind"
//	@Failure		400		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		404		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/team/recipients/{id}/role [put].
func (h *UpdateRecipientRoleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	recipient, err := h.RecipientService.UpdateRole(
		ctx,
		httpx.FamilyIDFromContext(ctx),
		r.PathValue("id"),
		domain.Role(req.Role),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "invalid_role",
				ErrorDescription: "role must be editor, readonly or noaccess",
			})
		case errors.Is(err, service.ErrRecipientNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "No member or pending invitation matches this id",
			})
		default:
			log.Error("role update failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to update the role",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, recipientView(recipient))
}

func recipientView(rec domain.Recipient) lettresdk.RecipientView {
	return lettresdk.RecipientView{
		ID:    rec.ID,
		Email: rec.Email,
		Role:  rec.Role.String(),
		Kind:  string(rec.Kind),
	}
}
