package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/nencyajudiya/blogstream/internal/auth"
	"github.com/nencyajudiya/blogstream/internal/model"
	"github.com/nencyajudiya/blogstream/internal/service"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// AuthHandler owns registration, login, profile, and the optional GitHub
// OAuth flow.
type AuthHandler struct {
	auth    *service.AuthService
	github  *auth.GitHubProvider // nil when OAuth is not configured
	uploads *upload.Store
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil; the server only
// registers the OAuth routes when it isn't.
func NewAuthHandler(
	authSvc *service.AuthService,
	github *auth.GitHubProvider,
	uploads *upload.Store,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:    authSvc,
		github:  github,
		uploads: uploads,
		logger:  logger,
	}
}

// authResponse is returned by register, login, and the OAuth callback.
// The token must be carried back verbatim in the Authorization header.
type authResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Token     string `json:"token"`
}

func toAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		ID:        res.User.ID,
		Name:      res.User.Name,
		Email:     res.User.Email,
		AvatarURL: res.User.AvatarURL,
		Token:     res.Token,
	}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// Body: {"name": ..., "email": ..., "password": ...}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"validation_error","message":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(res))
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /api/auth/login
// Body: {"email": ..., "password": ...}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"validation_error","message":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// HandleMe returns the authenticated account's profile.
//
// HTTP: GET /api/auth/me (gated)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	// Unreachable behind RequireAuth, but don't serve a nil identity.
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// HandleUpdateMe applies profile changes: an optional "name" form field and
// an optional "avatar" file upload.
//
// HTTP: PUT /api/auth/me (gated, multipart)
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := parseForm(r); err != nil {
		writeError(w, err)
		return
	}

	avatarURL, err := saveFormFile(r, "avatar", h.uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), identity.ID, r.FormValue("name"), avatarURL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state lands in a short-lived HttpOnly cookie; the callback
// checks that GitHub echoed it back, which pins the flow to this browser.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow and responds with the same
// token payload password login returns.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state check failed")
		http.Error(w, `{"error":"validation_error","message":"invalid OAuth state"}`, http.StatusBadRequest)
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, `{"error":"validation_error","message":"missing OAuth code"}`, http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, `{"error":"internal_error","message":"authentication failed"}`, http.StatusInternalServerError)
		return
	}

	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"internal_error","message":"authentication failed"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(res))
}

// identityOr401 is shared by the gated handlers in this package.
func identityOr401(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}
