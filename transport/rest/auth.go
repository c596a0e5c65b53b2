package rest

import (
	"encoding/json"
	"net/http"

	"github.com/cardgridgames/cardgrid-backend/internal/service"
)

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func loginHandler(users service.UserService, auth service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := users.Login(r.Context(), req.Email, req.Name)
		if err != nil {
			http.Error(w, "failed to login", http.StatusInternalServerError)
			return
		}

		token, err := auth.GenerateToken(user.Email)
		if err != nil {
			http.Error(w, "failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{Token: token})
	}
}
