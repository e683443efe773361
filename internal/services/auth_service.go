package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"homestock/internal/caching"
	"homestock/internal/common"
	"homestock/internal/models"
	"homestock/internal/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	loginRateLimit  = 5
	loginRateWindow = time.Minute
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, *models.TokenPair, error)
	Login(ctx context.Context, email, password, clientIP string) (*models.User, *models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TokenClaims is the JWT payload for access tokens. The middleware parses
// into this type and puts the user id on the request context.
type TokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo     repositories.UserRepository
	cacheService caching.CacheService
	jwtSecret    []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
	logger       zerolog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, cacheService caching.CacheService, jwtSecret string, accessTTL, refreshTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo:     userRepo,
		cacheService: cacheService,
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		logger:       logger,
	}
}

func validateCredentials(email, password string) error {
	if err := validation.Validate(email,
		validation.Required.Error("email is required"),
		validation.Match(emailPattern).Error("email is not valid"),
	); err != nil {
		return err
	}
	return validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.RuneLength(8, 72).Error("password must be between 8 and 72 characters"),
	)
}

func (s *authService) Register(ctx context.Context, email, password, displayName string) (*models.User, *models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if err := validateCredentials(email, password); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := validation.Validate(displayName,
		validation.RuneLength(0, 100).Error("display name must be at most 100 characters"),
	); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, nil, common.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, email, password, clientIP string) (*models.User, *models.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	rateKey := fmt.Sprintf("login:%s:%s", email, clientIP)
	limited, err := s.cacheService.IsRateLimited(ctx, rateKey, loginRateLimit, loginRateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login rate limit check failed")
	} else if limited {
		return nil, nil, common.ErrRateLimited
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", common.ErrUnauthorized)
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh redeems a refresh token for a fresh pair. Tokens are single-use;
// the redeemed one is dropped before the replacement is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	hash := hashToken(refreshToken)
	value, err := s.cacheService.GetString(ctx, refreshKey(hash))
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}
	if value == "" {
		return nil, fmt.Errorf("refresh token not recognized: %w", common.ErrUnauthorized)
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return nil, fmt.Errorf("refresh token malformed: %w", common.ErrUnauthorized)
	}
	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, fmt.Errorf("refresh token malformed: %w", common.ErrUnauthorized)
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("refresh token malformed: %w", common.ErrUnauthorized)
	}
	if time.Now().Unix() > expiry {
		if delErr := s.cacheService.Delete(ctx, refreshKey(hash)); delErr != nil {
			s.logger.Warn().Err(delErr).Msg("failed to drop expired refresh token")
		}
		return nil, fmt.Errorf("refresh token expired: %w", common.ErrUnauthorized)
	}

	if err := s.cacheService.Delete(ctx, refreshKey(hash)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to rotate refresh token")
	}
	return s.generateTokenPair(ctx, userID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	return s.cacheService.Delete(ctx, refreshKey(hashToken(refreshToken)))
}

func (s *authService) generateTokenPair(ctx context.Context, userID uuid.UUID) (*models.TokenPair, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "homestock",
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken := generateSecureToken()
	value := fmt.Sprintf("%s:%d", userID.String(), now.Add(s.refreshTTL).Unix())
	if err := s.cacheService.SetString(ctx, refreshKey(hashToken(refreshToken)), value, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.accessTTL.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

func refreshKey(tokenHash string) string {
	return fmt.Sprintf("homestock:refresh:%s", tokenHash)
}

// generateSecureToken returns a cryptographically random opaque token.
func generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken hashes a refresh token for storage so a cache dump never
// exposes redeemable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
