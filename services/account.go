package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-storefront/logger"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const minPasswordLength = 6

// RegisterInput is the sign-up request
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AccountService registers and logs in users
type AccountService struct {
	users  store.UserStore
	tokens *utils.TokenManager
	now    Clock
	logger zerolog.Logger
}

// NewAccountService creates an account service
func NewAccountService(users store.UserStore, tokens *utils.TokenManager) *AccountService {
	return &AccountService{
		users:  users,
		tokens: tokens,
		now:    time.Now,
		logger: logger.WithComponent("account"),
	}
}

// Register creates a user and returns it with a fresh token
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || in.Password == "" || name == "" {
		return nil, "", utils.Validation("Please provide email, password, and name")
	}
	if !validEmail(email) {
		return nil, "", utils.Validation("Please use a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", utils.Validation("Password must be at least 6 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", utils.Internal(err)
	}

	now := s.now()
	user := &models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", utils.Validation("Email is already registered")
		}
		return nil, "", storeErr(err, "User not found")
	}
	user.Password = ""

	token, err := s.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return nil, "", utils.Internal(err)
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	return user, token, nil
}

// Login checks credentials and returns the user with a fresh token
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", utils.Validation("Please provide email and password")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, "", storeErr(err, "User not found")
	}
	if err != nil || !utils.CheckPassword(user.Password, password) {
		return nil, "", utils.Unauthenticated("Invalid email or password", false)
	}
	user.Password = ""

	token, err := s.tokens.GenerateJWT(user.ID.Hex())
	if err != nil {
		return nil, "", utils.Internal(err)
	}
	return user, token, nil
}

// Me returns the stored user behind an identity
func (s *AccountService) Me(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

// ListUsers returns every user, newest first
func (s *AccountService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return users, nil
}

// SetAdmin grants or revokes admin rights by email
func (s *AccountService) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return utils.Validation("Please use a valid email address")
	}
	if err := s.users.SetAdmin(ctx, email, isAdmin); err != nil {
		return storeErr(err, "User not found")
	}
	s.logger.Info().Str("email", email).Bool("is_admin", isAdmin).Msg("admin flag changed")
	return nil
}
