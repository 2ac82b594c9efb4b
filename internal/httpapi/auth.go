package httpapi

import (
	"net/http"

	"github.com/vibetodo/vibetodo/internal/store"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *store.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	user, token, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusCreated, authResponse{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondErr(w, err)
		return
	}
	user, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFrom(r.Context())
	if principal == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := s.auth.Profile(r.Context(), principal.UserID)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// handleVerify confirms the presented token is valid; requireAuth has
// already done the verification by the time we get here.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  PrincipalFrom(r.Context()),
	})
}
