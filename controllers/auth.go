package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jewellery-backend/models"
	"jewellery-backend/store"
	"jewellery-backend/utils"
)

// AuthController handles registration and login.
type AuthController struct {
	Users     store.UserStore
	Tokens    *utils.TokenManager
	AdminCode string
}

// NewAuthController creates a new AuthController. adminCode gates admin
// registration; empty disables the gate.
func NewAuthController(users store.UserStore, tokens *utils.TokenManager, adminCode string) *AuthController {
	return &AuthController{Users: users, Tokens: tokens, AdminCode: adminCode}
}

type registerRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" validate:"required,min=6"`
	AdminCode   string `json:"adminCode"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterUser creates a customer account and returns a signed token.
func (ac *AuthController) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ac.register(w, r, models.RoleUser)
}

// RegisterAdmin creates an admin account. When a registration code is
// configured it must match.
func (ac *AuthController) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	ac.register(w, r, models.RoleAdmin)
}

func (ac *AuthController) register(w http.ResponseWriter, r *http.Request, role string) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if role == models.RoleAdmin && ac.AdminCode != "" && req.AdminCode != ac.AdminCode {
		writeMessage(w, http.StatusForbidden, "Invalid admin registration code")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    string(hashed),
		Role:        role,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err = ac.Users.Create(ctx, user)
	if err == store.ErrDuplicate {
		writeMessage(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	token, err := ac.Tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	message := "User registered successfully"
	if role == models.RoleAdmin {
		message = "Admin registered successfully"
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": message,
		"token":   token,
		"user":    user.Sanitized(),
	})
}

// Login verifies credentials and returns a signed token.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := ac.Users.FindByEmail(ctx, req.Email)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := ac.Tokens.Generate(user.ID.Hex(), user.Role)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    user.Sanitized(),
	})
}
