package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dkarklins/tradepost/internal/common"
	"github.com/dkarklins/tradepost/internal/server/models"
)

type signupRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Number    string `json:"number"`
	Password  string `json:"password"`
	CPassword string `json:"cpassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	baseResponse
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// sendToken issues a session token for user, sets the session cookie, and
// writes the auth envelope. The cookie lifetime equals the token validity so
// there is a single source of truth for session expiry.
func (s *HTTPServer) sendToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, err := s.users.IssueToken(user.ID)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokenValidity.Seconds()),
		HttpOnly: true,
		Secure:   !s.devMode,
	})

	s.writeJSON(w, status, authResponse{
		baseResponse: okResponse("Authentication successful"),
		Token:        token,
		User:         user,
	})
}

func (s *HTTPServer) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, okResponse("Welcome to the API Home route!"))
}

// handleSignup validates the request shape, then delegates to the user
// service. Validation precedence: missing field, then password mismatch,
// then duplicate email — all before any credential work.
func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please enter all the required fields")
		return
	}

	if req.FirstName == "" || req.Email == "" || req.Password == "" || req.CPassword == "" {
		s.writeError(w, http.StatusBadRequest, "Please enter all the required fields")
		return
	}
	if req.Password != req.CPassword {
		s.writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Number:    req.Number,
	}

	created, err := s.users.Signup(r.Context(), user, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.logger.Info(r.Context(), "user signed up", "email", created.Email)
	s.sendToken(w, r, created, http.StatusCreated)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Please enter both email and password")
		return
	}

	if req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "Please enter both email and password")
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err, "")
		return
	}

	s.sendToken(w, r, user, http.StatusOK)
}

func (s *HTTPServer) handleSignout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.devMode,
	})
	s.writeJSON(w, http.StatusOK, okResponse("Signed out successfully!"))
}

func (s *HTTPServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, okResponse("Working fine - authenticated route"))
}
