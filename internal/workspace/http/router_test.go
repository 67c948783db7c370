package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lettrehq/lettre/internal/workspace/domain"
	"github.com/lettrehq/lettre/internal/workspace/service"
	"github.com/lettrehq/lettre/internal/workspace/store"
	"github.com/lettrehq/lettre/internal/workspace/store/drivers/sqlite"
	"github.com/lettrehq/lettre/pkg/jwtx"
	"github.com/lettrehq/lettre/pkg/lettresdk"
	"github.com/lettrehq/lettre/pkg/mailx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "router-test-secret"
	testIssuer  = "lettre-platform"
	testBaseURL = "https://app.example.com"
)

type testEnv struct {
	router   *Router
	signer   *jwtx.HS256Signer
	recorder *mailx.Recorder
	store    store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	recorder := &mailx.Recorder{}
	verifier, err := jwtx.NewHS256Verifier(testSecret, testIssuer)
	require.NoError(t, err)

	router := NewRouter(verifier, testBaseURL, "test", st, slog.New(slog.DiscardHandler))
	router.SenderService = &service.SenderService{
		Store:    st,
		Mailer:   recorder,
		BaseURL:  testBaseURL,
		TokenTTL: 24 * time.Hour,
	}
	router.RecipientService = &service.RecipientService{Store: st}
	router.InvitationService = &service.InvitationService{
		Store:   st,
		Mailer:  recorder,
		BaseURL: testBaseURL,
		TTL:     72 * time.Hour,
	}
	router.RecoveryService = &service.RecoveryService{
		Store:   st,
		Mailer:  recorder,
		BaseURL: testBaseURL,
		TTL:     time.Hour,
	}
	router.ApplyRoutes()

	return &testEnv{
		router:   router,
		signer:   jwtx.NewHS256Signer(testSecret, testIssuer),
		recorder: recorder,
		store:    st,
	}
}

func (e *testEnv) bearer(t *testing.T, familyID string, scopes ...string) string {
	t.Helper()

	token, err := e.signer.Sign("user-1", familyID, scopes, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, target, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// tokenFromMail pulls the value of a query parameter out of the last
// recorded mail body.
func tokenFromMail(t *testing.T, recorder *mailx.Recorder, param string) string {
	t.Helper()

	sent := recorder.Sent()
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].BodyHTML

	marker := param + "="
	start := strings.Index(body, marker)
	require.Positive(t, start)
	rest := body[start+len(marker):]
	end := strings.IndexAny(rest, `"&`)
	require.Positive(t, end)
	return rest[:end]
}

func TestSendMailEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("requires a bearer token", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail", "",
			lettresdk.SendMailRequest{Email: "a@example.com", Token: "tok"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("requires the senders write scope", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail",
			env.bearer(t, "fam-1", ScopeTeamRead),
			lettresdk.SendMailRequest{Email: "a@example.com", Token: "tok"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("mails the supplied token", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.SendMailRequest{Email: "a@example.com", Nom: "A", Token: "tok-abc"})
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decodeJSON[lettresdk.SendMailResponse](t, rec)
		require.True(t, resp.Success)
		require.Len(t, env.recorder.Sent(), 1)
	})

	t.Run("missing email is a 400", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.SendMailRequest{Token: "tok"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeJSON[lettresdk.ErrorResponse](t, rec)
		require.Equal(t, "missing_parameters", resp.Error)
	})

	t.Run("renvoi without id is a 400 and sends nothing", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.SendMailRequest{Email: "a@example.com", Renvoi: true})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, env.recorder.Sent())
	})

	t.Run("renvoi for an unknown sender is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/send-mail",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.SendMailRequest{Email: "a@example.com", Renvoi: true, ID: "nope"})
		require.Equal(t, http.StatusNotFound, rec.Code)

		resp := decodeJSON[lettresdk.ErrorResponse](t, rec)
		require.Equal(t, "not_found", resp.Error)
	})
}

func TestConfirmSenderEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("a valid link redirects to the success page with the coordinates", func(t *testing.T) {
		env := newTestEnv(t)

		create := env.do(t, http.MethodPost, "/api/expediteur",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.CreateSenderRequest{Email: "a@example.com", Nom: "A"})
		require.Equal(t, http.StatusCreated, create.Code)
		token := tokenFromMail(t, env.recorder, "token")

		rec := env.do(t, http.MethodGet, "/auth/confirmer-expediteur?token="+token, "", nil)
		require.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/expediteurs/valider/succes", loc.Path)
		require.Equal(t, token, loc.Query().Get("token"))
		require.Equal(t, "a@example.com", loc.Query().Get("email"))
		require.Equal(t, "fam-1", loc.Query().Get("famille_id"))
	})

	t.Run("an unknown token redirects to the error page", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet, "/auth/confirmer-expediteur?token=never-issued", "", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, testBaseURL+"/erreur-lien", rec.Header().Get("Location"))
	})
}

func TestConsumeTokenEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("consumes once then answers 404", func(t *testing.T) {
		env := newTestEnv(t)

		create := env.do(t, http.MethodPost, "/api/expediteur",
			env.bearer(t, "fam-1", ScopeSendersWrite),
			lettresdk.CreateSenderRequest{Email: "a@example.com"})
		require.Equal(t, http.StatusCreated, create.Code)
		token := tokenFromMail(t, env.recorder, "token")

		confirm := env.do(t, http.MethodGet, "/auth/confirmer-expediteur?token="+token, "", nil)
		require.Equal(t, http.StatusFound, confirm.Code)

		body := lettresdk.ConsumeTokenRequest{Token: token, Email: "a@example.com", FamilleID: "fam-1"}
		rec := env.do(t, http.MethodPost, "/api/expediteur/consume-token", "", body)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeJSON[lettresdk.ConsumeTokenResponse](t, rec)
		require.True(t, resp.Success)
		require.EqualValues(t, 1, resp.Count)

		again := env.do(t, http.MethodPost, "/api/expediteur/consume-token", "", body)
		require.Equal(t, http.StatusNotFound, again.Code)
	})

	t.Run("missing coordinates are a 400", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/expediteur/consume-token", "",
			lettresdk.ConsumeTokenRequest{Token: "tok"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecipientEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("resolves and updates a pending invitation", func(t *testing.T) {
		env := newTestEnv(t)

		invite := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "readonly"})
		require.Equal(t, http.StatusCreated, invite.Code)
		created := decodeJSON[lettresdk.InvitationView](t, invite)

		get := env.do(t, http.MethodGet, "/api/team/recipients/"+created.ID,
			env.bearer(t, "fam-1", ScopeTeamRead), nil)
		require.Equal(t, http.StatusOK, get.Code)
		view := decodeJSON[lettresdk.RecipientView](t, get)
		require.Equal(t, "invitation", view.Kind)
		require.Equal(t, "readonly", view.Role)

		update := env.do(t, http.MethodPut, "/api/team/recipients/"+created.ID+"/role",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.UpdateRoleRequest{Role: "editor"})
		require.Equal(t, http.StatusOK, update.Code)
		updated := decodeJSON[lettresdk.RecipientView](t, update)
		require.Equal(t, "editor", updated.Role)
		require.Equal(t, "invitation", updated.Kind)
	})

	t.Run("an invalid role is a 400", func(t *testing.T) {
		env := newTestEnv(t)

		invite := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "readonly"})
		created := decodeJSON[lettresdk.InvitationView](t, invite)

		rec := env.do(t, http.MethodPut, "/api/team/recipients/"+created.ID+"/role",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.UpdateRoleRequest{Role: "owner"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeJSON[lettresdk.ErrorResponse](t, rec)
		require.Equal(t, "invalid_role", resp.Error)
	})

	t.Run("an unknown id is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet, "/api/team/recipients/unknown-id",
			env.bearer(t, "fam-1", ScopeTeamRead), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("another family's recipient is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		invite := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "editor"})
		created := decodeJSON[lettresdk.InvitationView](t, invite)

		rec := env.do(t, http.MethodGet, "/api/team/recipients/"+created.ID,
			env.bearer(t, "fam-2", ScopeTeamRead), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInvitationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("invite, list and accept", func(t *testing.T) {
		env := newTestEnv(t)

		invite := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "editor"})
		require.Equal(t, http.StatusCreated, invite.Code)

		list := env.do(t, http.MethodGet, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamRead), nil)
		require.Equal(t, http.StatusOK, list.Code)
		invitations := decodeJSON[[]lettresdk.InvitationView](t, list)
		require.Len(t, invitations, 1)

		token := tokenFromMail(t, env.recorder, "token")
		accept := env.do(t, http.MethodPost, "/api/team/invitations/accept", "",
			lettresdk.AcceptInvitationRequest{Token: token, Password: "s3cret-passphrase", FirstName: "Dana"})
		require.Equal(t, http.StatusCreated, accept.Code)
		member := decodeJSON[lettresdk.AcceptInvitationResponse](t, accept)
		require.Equal(t, "dana@example.com", member.Email)
		require.Equal(t, "editor", member.Role)

		// The accepted invitation no longer lists.
		list = env.do(t, http.MethodGet, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamRead), nil)
		invitations = decodeJSON[[]lettresdk.InvitationView](t, list)
		require.Empty(t, invitations)
	})

	t.Run("double invitation is a 409", func(t *testing.T) {
		env := newTestEnv(t)

		first := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "editor"})
		require.Equal(t, http.StatusCreated, first.Code)

		second := env.do(t, http.MethodPost, "/api/team/invitations",
			env.bearer(t, "fam-1", ScopeTeamWrite),
			lettresdk.InviteRequest{Email: "dana@example.com", Role: "editor"})
		require.Equal(t, http.StatusConflict, second.Code)
		resp := decodeJSON[lettresdk.ErrorResponse](t, second)
		require.Equal(t, "already_invited", resp.Error)
	})

	t.Run("accepting an unknown token is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/team/invitations/accept", "",
			lettresdk.AcceptInvitationRequest{Token: "never-issued", Password: "pw"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRecoveryEndpoints(t *testing.T) {
	t.Parallel()

	seedMember := func(t *testing.T, env *testEnv, email string) {
		t.Helper()
		now := time.Now().UTC()
		require.NoError(t, env.store.Members().CreateMember(context.Background(), domain.Member{
			ID:           "member-1",
			FamilyID:     "fam-1",
			Email:        email,
			Role:         domain.RoleEditor,
			PasswordHash: "old-hash",
			CreatedAt:    now,
			UpdatedAt:    now,
		}))
	}

	t.Run("request succeeds for unknown addresses without mail", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/compte/recovery", "",
			lettresdk.RecoveryRequest{Email: "nobody@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, env.recorder.Sent())
	})

	t.Run("the full reset flow", func(t *testing.T) {
		env := newTestEnv(t)
		seedMember(t, env, "alice@example.com")

		rec := env.do(t, http.MethodPost, "/api/compte/recovery", "",
			lettresdk.RecoveryRequest{Email: "alice@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		hash := tokenFromMail(t, env.recorder, "token_hash")

		confirm := env.do(t, http.MethodGet,
			"/auth/confirmer-reinitialisation?token_hash="+hash+"&type=recovery", "", nil)
		require.Equal(t, http.StatusFound, confirm.Code)
		loc, err := url.Parse(confirm.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/compte/nouveau-mot-de-passe", loc.Path)
		require.Equal(t, hash, loc.Query().Get("token_hash"))

		reset := env.do(t, http.MethodPost, "/api/compte/nouveau-mot-de-passe", "",
			lettresdk.NewPasswordRequest{TokenHash: hash, Password: "new-passphrase"})
		require.Equal(t, http.StatusOK, reset.Code)

		// The consumed link bounces to the error page.
		replay := env.do(t, http.MethodGet,
			"/auth/confirmer-reinitialisation?token_hash="+hash+"&type=recovery", "", nil)
		require.Equal(t, http.StatusFound, replay.Code)
		require.Contains(t, replay.Header().Get("Location"), "/erreur-lien?type=recovery&reason=invalid")
	})

	t.Run("a wrong link type bounces with the invalid reason", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodGet,
			"/auth/confirmer-reinitialisation?token_hash=abc&type=magiclink", "", nil)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, rec.Header().Get("Location"), "reason=invalid")
	})

	t.Run("resetting with an unknown hash is a 404", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, http.MethodPost, "/api/compte/nouveau-mot-de-passe", "",
			lettresdk.NewPasswordRequest{TokenHash: "never-issued", Password: "pw"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	livez := env.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, livez.Code)
	health := decodeJSON[lettresdk.HealthResponse](t, livez)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	readyz := env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, readyz.Code)
	ready := decodeJSON[lettresdk.HealthResponse](t, readyz)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
}
