package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FirmName string `json:"firm_name,omitempty"` // register only
}

type AuthResponse struct {
	Token string `json:"token"`
}

// RegisterHandler creates the user and, when firm_name is supplied, the
// firm as well — the first registered user of a firm becomes its owner.
func RegisterHandler(dbx *sql.DB, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		var exists int
		err := dbx.QueryRowContext(r.Context(),
			`SELECT COUNT(*) FROM users WHERE email = $1`, req.Email,
		).Scan(&exists)
		if err == nil && exists > 0 {
			http.Error(w, "email already exists", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}

		firmName := strings.TrimSpace(req.FirmName)
		if firmName == "" {
			firmName = req.Email
		}
		var firmID int
		err = dbx.QueryRowContext(r.Context(),
			`INSERT INTO firms (name) VALUES ($1) RETURNING id`, firmName,
		).Scan(&firmID)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var userID int
		err = dbx.QueryRowContext(r.Context(),
			`INSERT INTO users (email, password, firm_id) VALUES ($1, $2, $3) RETURNING id`,
			req.Email, string(hash), firmID,
		).Scan(&userID)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		token, err := GenerateToken(secret, userID, firmID)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AuthResponse{Token: token})
	}
}

func LoginHandler(dbx *sql.DB, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))

		var (
			userID, firmID int
			hash           string
		)
		err := dbx.QueryRowContext(r.Context(),
			`SELECT id, firm_id, password FROM users WHERE email = $1`, req.Email,
		).Scan(&userID, &firmID, &hash)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusForbidden)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusForbidden)
			return
		}

		token, err := GenerateToken(secret, userID, firmID)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(AuthResponse{Token: token})
	}
}

func MeHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			email    string
			firmID   int
			firmName string
		)
		err := dbx.QueryRowContext(r.Context(), `
			SELECT u.email, u.firm_id, COALESCE(f.name, '')
			FROM users u
			LEFT JOIN firms f ON f.id = u.firm_id
			WHERE u.id = $1
		`, uid).Scan(&email, &firmID, &firmName)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":        uid,
			"email":     email,
			"firm_id":   firmID,
			"firm_name": firmName,
		})
	}
}
