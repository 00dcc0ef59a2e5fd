package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/stsysd/nisshi/model"
)

// CredentialsParams represents parameters for sign up and login.
type CredentialsParams struct {
	Email    string
	Password string
}

// NewCredentialsParams creates credential parameters from HTTP request.
func NewCredentialsParams(r *http.Request) (*CredentialsParams, error) {
	var requestBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	if requestBody.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if requestBody.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	return &CredentialsParams{
		Email:    requestBody.Email,
		Password: requestBody.Password,
	}, nil
}

// sessionResponse はセッション確立時のレスポンスボディです。
type sessionResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// handleSignUp はユーザー登録エンドポイントのハンドラーです。
// 登録成功時はそのままセッションを確立します。
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	params, err := NewCredentialsParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.SignUp(r.Context(), params.Email, params.Password)
	if err != nil {
		if errors.Is(err, model.ErrDuplicateEmail) {
			writeJSONError(w, "Email is already registered", http.StatusConflict)
			return
		}
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("Error signing up: %v", err)
		writeJSONError(w, "Failed to sign up", http.StatusInternalServerError)
		return
	}

	s.sessions.SetCookie(w, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID: sess.UserID.String(),
		Email:  sess.Email,
	})
}

// handleLogin はログインエンドポイントのハンドラーです。
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	params, err := NewCredentialsParams(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.SignIn(r.Context(), params.Email, params.Password)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthenticated) {
			// 未登録とパスワード誤りは区別しない
			writeJSONError(w, "Invalid email or password", http.StatusUnauthorized)
			return
		}
		log.Printf("Error signing in: %v", err)
		writeJSONError(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	s.sessions.SetCookie(w, sess)
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID: sess.UserID.String(),
		Email:  sess.Email,
	})
}

// handleLogout はログアウトエンドポイントのハンドラーです。
// 未認証でも成功として扱います。
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.SignOut(r)
	s.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe は現在のセッションのユーザー情報を返却するハンドラーです。
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSONError(w, "Unauthorized: sign in required", http.StatusUnauthorized)
		return
	}

	user, err := s.store.GetUser(r.Context(), uid)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		writeJSONError(w, "Failed to retrieve user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
