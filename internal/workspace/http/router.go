package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/pkg/httpx"
	"github.com/lettrehq/lettre/pkg/jwtx"
	"github.com/lettrehq/lettre/pkg/slogx"
)

// Scopes the hosted auth platform mints into workspace access tokens.
const (
	ScopeSendersRead  = "senders:read"
	ScopeSendersWrite = "senders:write"
	ScopeTeamRead     = "team:read"
	ScopeTeamWrite    = "team:write"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	baseURL      string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	SenderService     *service.SenderService
	RecipientService  *service.RecipientService
	InvitationService *service.InvitationService
	RecoveryService   *service.RecoveryService
}

func NewRouter(
	verifier jwtx.Verifier,
	baseURL, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		baseURL:      baseURL,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSenders()
	r.registerConfirmRedirects()
	r.registerTeam()
	r.registerAccount()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSenders() {
	sendMail := &SendMailHandler{SenderService: r.SenderService}
	consume := &ConsumeTokenHandler{SenderService: r.SenderService}
	create := &CreateSenderHandler{SenderService: r.SenderService}
	list := &ListSendersHandler{SenderService: r.SenderService}

	// POST /api/expediteur/send-mail - strict limit, sends outbound mail
	r.Mux.Handle("POST /api/expediteur/send-mail",
		httpx.Chain(sendMail,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeSendersWrite),
		),
	)

	// POST /api/expediteur/consume-token - public: the success page calls it
	// with the coordinates the verification redirect handed over, and the
	// four-way predicate does the gating.
	r.Mux.Handle("POST /api/expediteur/consume-token",
		httpx.Chain(consume,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/expediteur",
		httpx.Chain(create,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeSendersWrite),
		),
	)

	r.Mux.Handle("GET /api/expediteur",
		httpx.Chain(list,
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeSendersRead, ScopeSendersWrite),
		),
	)
}

func (r *Router) registerConfirmRedirects() {
	confirmSender := &ConfirmSenderHandler{
		SenderService: r.SenderService,
		BaseURL:       r.baseURL,
	}
	confirmRecovery := &ConfirmRecoveryHandler{
		RecoveryService: r.RecoveryService,
		BaseURL:         r.baseURL,
	}

	// Link clicks from mail clients; lenient since prefetchers also hit these.
	r.Mux.Handle("GET /auth/confirmer-expediteur",
		httpx.Chain(confirmSender,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /auth/confirmer-reinitialisation",
		httpx.Chain(confirmRecovery,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTeam() {
	getRecipient := &GetRecipientHandler{RecipientService: r.RecipientService}
	updateRole := &UpdateRecipientRoleHandler{RecipientService: r.RecipientService}
	invite := &InviteHandler{InvitationService: r.InvitationService}
	listInvitations := &ListInvitationsHandler{InvitationService: r.InvitationService}
	accept := &AcceptInvitationHandler{InvitationService: r.InvitationService}

	r.Mux.Handle("GET /api/team/recipients/{id}",
		httpx.Chain(getRecipient,
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeTeamRead, ScopeTeamWrite),
		),
	)

	r.Mux.Handle("PUT /api/team/recipients/{id}/role",
		httpx.Chain(updateRole,
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeTeamWrite),
		),
	)

	r.Mux.Handle("POST /api/team/invitations",
		httpx.Chain(invite,
			httpx.RateLimitByIP(httpx.StrictLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeTeamWrite),
		),
	)

	r.Mux.Handle("GET /api/team/invitations",
		httpx.Chain(listInvitations,
			httpx.RateLimitByIP(httpx.LenientLimit),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeTeamRead, ScopeTeamWrite),
		),
	)

	// Public: the invitee is not authenticated yet.
	r.Mux.Handle("POST /api/team/invitations/accept",
		httpx.Chain(accept,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAccount() {
	request := &RecoveryRequestHandler{RecoveryService: r.RecoveryService}
	newPassword := &NewPasswordHandler{RecoveryService: r.RecoveryService}

	r.Mux.Handle("POST /api/compte/recovery",
		httpx.Chain(request,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/compte/nouveau-mot-de-passe",
		httpx.Chain(newPassword,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
