package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"interviewai/internal/auth"
	"interviewai/internal/middleware"
	"interviewai/pkg/logging/logging"
)

type AuthHandler struct {
	Service *auth.Service
	// SecureCookie marks the session cookie HTTPS-only.
	SecureCookie bool
}

func NewAuthHandler(svc *auth.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{Service: svc, SecureCookie: secureCookie}
}

type credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	// bcrypt rejects input past 72 bytes
	Password string `json:"password" validate:"required,max=72"`
}

type sessionResponse struct {
	UserLoggedIn bool   `json:"user_logged_in"`
	UserName     string `json:"user_name"`
}

// decodeCredentials reads a JSON body or an HTML form post.
func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, err
	}
	c.Username = r.PostForm.Get("username")
	c.Password = r.PostForm.Get("password")
	return c, nil
}

// SignUp handles POST /signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())

	creds, err := decodeCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(creds); err != nil {
		writeError(w, http.StatusBadRequest, credentialsMessage(err))
		return
	}

	u, err := h.Service.SignUp(creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Username and password are required!")
		return
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "Username already exists!")
		return
	case err != nil:
		logger.Error("sign up", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create account.")
		return
	}

	logger.Info("account created", zap.String("user", u.Username))
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":   "Account created for " + u.Username + "!",
		"user_name": u.Username,
	})
}

// SignIn handles POST /signin and sets the session cookie.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger := logging.L(r.Context())

	creds, err := decodeCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(creds); err != nil {
		writeError(w, http.StatusBadRequest, credentialsMessage(err))
		return
	}

	u, token, expiresAt, err := h.Service.SignIn(creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, "Username and password are required!")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password!")
		return
	case err != nil:
		logger.Error("sign in", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not sign in.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("signed in", zap.String("user", u.Username))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Welcome back, " + u.Username + "!",
		"user_name": u.Username,
	})
}

// Logout handles GET|POST /logout by expiring the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	msg := "Signed out."
	if claims, ok := middleware.SessionFromContext(r.Context()); ok {
		msg = "Goodbye, " + claims.Username + "!"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// Session handles GET /session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{}
	if claims, ok := middleware.SessionFromContext(r.Context()); ok {
		resp.UserLoggedIn = true
		resp.UserName = claims.Username
	}
	writeJSON(w, http.StatusOK, resp)
}

func credentialsMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return "Username and password are required!"
			}
		}
	}
	return validationMessage(err)
}
