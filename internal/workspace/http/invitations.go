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

type InviteHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Creation Endpoint
//	@Description	Invite an email address into the authenticated family with a role and dispatch the invite email. Rejects addresses that already have a member account or a pending invitation.
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.InviteRequest		true	"Invitee and role"
//	@Success		201		{object}	lettresdk.InvitationView	"id, email, role, expires_at"
//	@Failure		400		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		409		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/team/invitations [post].
func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	inv, err := h.InvitationService.Invite(
		ctx,
		httpx.FamilyIDFromContext(ctx),
		req.Email,
		domain.Role(req.Role),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "email is required",
			})
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "invalid_role",
				ErrorDescription: "role must be editor, readonly or noaccess",
			})
		case errors.Is(err, service.ErrAlreadyMember):
			httpx.WriteJSON(w, http.StatusConflict, lettresdk.ErrorResponse{
				Error:            "already_member",
				ErrorDescription: "This address already belongs to a member",
			})
		case errors.Is(err, service.ErrAlreadyInvited):
			httpx.WriteJSON(w, http.StatusConflict, lettresdk.ErrorResponse{
				Error:            "already_invited",
				ErrorDescription: "A pending invitation already exists for this address",
			})
		case errors.Is(err, service.ErrMailDelivery):
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "mail_delivery_error",
				ErrorDescription: "Invitation created but the invite email failed",
			})
		default:
			log.Error("invitation failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to create the invitation",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, invitationView(inv))
}

type ListInvitationsHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Listing Endpoint
//	@Description	List the authenticated family's pending invitations, newest first.
//	@Tags			Team
//	@Produce		json
//	@Success		200	{array}		lettresdk.InvitationView	"invitations"
//	@Failure		500	{object}	lettresdk.ErrorResponse		"error, error_description"
//	@Security		BearerAuth
//	@Router			/api/team/invitations [get].
func (h *ListInvitationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	invitations, err := h.InvitationService.ListPending(ctx, httpx.FamilyIDFromContext(ctx))
	if err != nil {
		log.Error("invitation listing failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
			Error:            "persistence_error",
			ErrorDescription: "Failed to list invitations",
		})
		return
	}

	views := make([]lettresdk.InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		views = append(views, invitationView(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, views)
}

type AcceptInvitationHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Acceptance Endpoint
//	@Description	Redeem an invite token into a member account carrying the invited role. The invitee is not authenticated yet; the token is the credential.
//	@Tags			Team
//	@Accept			json
//	@Produce		json
//	@Param			request	body		lettresdk.AcceptInvitationRequest	true	"Invite token and profile"
//	@Success		201		{object}	lettresdk.AcceptInvitationResponse	"member_id, email, role"
//	@Failure		400		{object}	lettresdk.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	lettresdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	lettresdk.ErrorResponse				"error, error_description"
//	@Failure		500		{object}	lettresdk.ErrorResponse				"error, error_description"
//	@Router			/api/team/invitations/accept [post].
func (h *AcceptInvitationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req lettresdk.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
			Error:            "missing_parameters",
			ErrorDescription: "Invalid JSON body",
		})
		return
	}

	member, err := h.InvitationService.Accept(
		ctx,
		req.Token,
		req.Password,
		req.FirstName,
		req.LastName,
		req.Company,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingParameters):
			httpx.WriteJSON(w, http.StatusBadRequest, lettresdk.ErrorResponse{
				Error:            "missing_parameters",
				ErrorDescription: "token and password are required",
			})
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, lettresdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Invitation is invalid or expired",
			})
		case errors.Is(err, service.ErrAlreadyMember):
			httpx.WriteJSON(w, http.StatusConflict, lettresdk.ErrorResponse{
				Error:            "already_member",
				ErrorDescription: "This address already belongs to a member",
			})
		default:
			log.Error("invitation acceptance failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, lettresdk.ErrorResponse{
				Error:            "persistence_error",
				ErrorDescription: "Failed to accept the invitation",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, lettresdk.AcceptInvitationResponse{
		MemberID: member.ID,
		Email:    member.Email,
		Role:     member.Role.String(),
	})
}

func invitationView(inv domain.Invitation) lettresdk.InvitationView {
	return lettresdk.InvitationView{
		ID:        inv.ID,
		Email:     inv.Email,
		Role:      inv.Role.String(),
		ExpiresAt: inv.ExpiresAt.Unix(),
	}
}
