package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/auth"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/config"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/db"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

var (
	// ErrEmailExists is returned when an attempt is made to use an email that already exists.
	ErrEmailExists = errors.New("email already in use by another account")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when a password fails PASSWORD_REGEXP.
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrInvalidEmail is returned for malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrUserNotFound is returned when no account has the requested id.
	ErrUserNotFound = errors.New("user not found")
)

// Registration is the sign-up form.
type Registration struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// IUserService defines the interface for account operations.
type IUserService interface {
	Register(ctx context.Context, reg Registration) (*Session, error)
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// userService implements IUserService.
type userService struct {
	db       *mongo.Database
	cfg      *config.Config
	password *regexp.Regexp
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database, cfg *config.Config) (IUserService, error) {
	re, err := regexp.Compile(cfg.PasswordRegexp)
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_REGEXP: %w", err)
	}
	return &userService{db: database, cfg: cfg, password: re}, nil
}

func (s *userService) coll() *mongo.Collection {
	return s.db.Collection(db.UsersCollection)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, reg Registration) (*Session, error) {
	email := normalizeEmail(reg.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !s.password.MatchString(reg.Password) {
		return nil, ErrWeakPassword
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:        email,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Phone:        strings.TrimSpace(reg.Phone),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// uuid collisions are retried; an email collision is final
	err = db.Try(func() error {
		user.GenID()
		_, insertErr := s.coll().InsertOne(ctx, user)
		if insertErr != nil && mongo.IsDuplicateKeyError(insertErr) && strings.Contains(insertErr.Error(), "email") {
			return ErrEmailExists
		}
		return insertErr
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error inserting user %s: %w", email, err)
	}
	return s.session(user)
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	var user models.User
	err := s.coll().FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.session(&user)
}

func (s *userService) session(user *models.User) (*Session, error) {
	token, err := auth.GenerateJWT(user.ID, user.IsAdmin, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: time.Now().Add(s.cfg.JwtTTL).UTC(), User: user}, nil
}

func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.coll().FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID, err)
	}
	return &user, nil
}
