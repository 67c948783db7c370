package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/pkg/slogx"
)

type ConfirmRecoveryHandler struct {
	RecoveryService *service.RecoveryService
	BaseURL         string
}

// ServeHTTP godoc
//
//	@Summary		Recovery Confirmation Link Endpoint
//	@Description	Handle the link click from the password-reset email. A usable token redirects to the new-password form carrying the same token_hash; expired and invalid links land on the error page with a reason.
//	@Tags			Account
//	@Param			token_hash	query	string	true	"Recovery token fingerprint"
//	@Param			type		query	string	true	"Must be recovery"
//	@Success		302			"Redirect to the new-password form or error page"
//	@Router			/auth/confirmer-reinitialisation [get].
func (h *ConfirmRecoveryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	tokenHash := r.URL.Query().Get("token_hash")
	linkType := r.URL.Query().Get("type")

	err := h.RecoveryService.Confirm(ctx, tokenHash, linkType)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, service.ErrRecoveryExpired) {
			reason = "expired"
		}
		log.Warn("recovery confirmation rejected", "reason", reason)
		http.Redirect(w, r, h.BaseURL+"/erreur-lien?type=recovery&reason="+reason, http.StatusFound)
		return
	}

	q := url.Values{}
	q.Set("token_hash", tokenHash)
	http.Redirect(w, r, h.BaseURL+"/compte/nouveau-mot-de-passe?"+q.Encode(), http.StatusFound)
}
