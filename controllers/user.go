package controllers

import (
	"net/http"

	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/utils"
)

// UserController handles account requests
type UserController struct {
	Accounts *services.AccountService
}

// NewUserController creates a new UserController
func NewUserController(accounts *services.AccountService) *UserController {
	return &UserController{Accounts: accounts}
}

type authResponse struct {
	Success bool         `json:"success"`
	User    *models.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

// Register handles user registration
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, token, err := uc.Accounts.Register(ctx, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, authResponse{Success: true, User: user, Token: token})
}

// Login handles user login
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, token, err := uc.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, authResponse{Success: true, User: user, Token: token})
}

// GetProfile returns the authenticated user's profile
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := caller(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	user, err := uc.Accounts.Me(ctx, identity.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, authResponse{Success: true, User: user})
}

// GetAllUsers lists every account (Admin only)
func (uc *UserController) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	users, err := uc.Accounts.ListUsers(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"users":   users,
	})
}
