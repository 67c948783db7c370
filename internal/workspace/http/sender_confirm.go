package http

import (
	"net/http"
	"net/url"

	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/pkg/slogx"
)

type ConfirmSenderHandler struct {
	SenderService *service.SenderService
	BaseURL       string
}

// ServeHTTP godoc
//
//	@Summary		Sender Confirmation Link Endpoint
//	@Description	Handle the link click from the confirmation email. A valid token marks the sender verified (idempotently) and redirects to the success page carrying token, email and famille_id for the consumption step; anything else redirects to the error page.
//	@Tags			Senders
//	@Param			token	query	string	true	"Raw confirmation token"
//	@Success		302		"Redirect to success or error page"
//	@Router			/auth/confirmer-expediteur [get].
func (h *ConfirmSenderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.URL.Query().Get("token")

	verified, err := h.SenderService.VerifyToken(ctx, token)
	if err != nil {
		// Invalid and expired links land on the same generic page; the
		// details are in the logs, not the URL.
		log.Warn("sender confirmation rejected", "err", err)
		http.Redirect(w, r, h.BaseURL+"/erreur-lien", http.StatusFound)
		return
	}

	// The token survives this redirect on purpose: the success page shows a
	// confirmation before calling consume-token.
	q := url.Values{}
	q.Set("token", verified.Token)
	q.Set("email", verified.Email)
	q.Set("famille_id", verified.FamilyID)
	http.Redirect(w, r, h.BaseURL+"/expediteurs/valider/succes?"+q.Encode(), http.StatusFound)
}
