package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"mesa/internal/models"
	"mesa/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "mesa-auth"
	TokenAudience = "mesa-api"

	minPasswordLength = 8
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// AuthService registers restaurants with their owner, manages staff accounts
// and issues access tokens.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	CreateStaff(ctx context.Context, restaurantID uuid.UUID, req *models.StaffRequest) (*models.User, error)
	ListStaff(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error)
	Me(ctx context.Context, restaurantID, userID uuid.UUID) (*models.User, error)
}

// TokenClaims are the claims carried by access tokens.
type TokenClaims struct {
	UserID       string      `json:"user_id"`
	RestaurantID string      `json:"restaurant_id"`
	Role         models.Role `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	restaurants repositories.RestaurantRepository
	users       repositories.UserRepository
	jwtSecret   []byte
	tokenTTL    time.Duration
	now         func() time.Time
}

func NewAuthService(restaurants repositories.RestaurantRepository, users repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		restaurants: restaurants,
		users:       users,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
		now:         time.Now,
	}
}

func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return "", invalid("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return "", invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > 72 {
		return "", invalid("password", "cannot exceed 72 characters")
	}
	return email, nil
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	req.RestaurantName = strings.TrimSpace(req.RestaurantName)
	if req.RestaurantName == "" {
		return nil, invalid("restaurant_name", "is required")
	}
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(req.Slug) || len(req.Slug) > 60 {
		return nil, invalid("slug", "must be lowercase letters, digits and dashes")
	}
	req.OwnerName = strings.TrimSpace(req.OwnerName)
	if req.OwnerName == "" {
		return nil, invalid("owner_name", "is required")
	}
	email, err := validateCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	restaurant := &models.Restaurant{
		ID:      uuid.New(),
		Name:    req.RestaurantName,
		Slug:    req.Slug,
		Phone:   req.Phone,
		Address: req.Address,
		IsOpen:  true,
	}
	owner := &models.User{
		ID:           uuid.New(),
		RestaurantID: restaurant.ID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.OwnerName,
		Role:         models.RoleOwner,
	}
	if err := s.restaurants.CreateWithOwner(ctx, restaurant, owner); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("restaurant slug or email %w", ErrAlreadyExists)
		}
		return nil, err
	}
	return s.issueToken(owner)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *authService) CreateStaff(ctx context.Context, restaurantID uuid.UUID, req *models.StaffRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, invalid("name", "is required")
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if !req.Role.Valid() {
		return nil, invalid("role", "must be owner or staff")
	}
	email, err := validateCredentials(req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email %w", ErrAlreadyExists)
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListStaff(ctx context.Context, restaurantID uuid.UUID) ([]*models.User, error) {
	users, err := s.users.List(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

func (s *authService) Me(ctx context.Context, restaurantID, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, restaurantID, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	return user, err
}

func (s *authService) issueToken(user *models.User) (*models.TokenResponse, error) {
	now := s.now()
	claims := TokenClaims{
		UserID:       user.ID.String(),
		RestaurantID: user.RestaurantID.String(),
		Role:         user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	return &models.TokenResponse{
		AccessToken:  token,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		UserID:       user.ID.String(),
		RestaurantID: user.RestaurantID.String(),
		Role:         user.Role,
		IssuedAt:     now,
	}, nil
}
