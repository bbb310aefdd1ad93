package services

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// TokenSigner issues a dashboard session token for the given subject.
type TokenSigner func(subject string, ttl time.Duration) (string, error)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DashboardAuthService gates visibility of the dashboard for a single
// operator account. It is not a user management system.
type DashboardAuthService struct {
	username  string
	passHash  []byte
	now       func() time.Time
	signToken TokenSigner
	tokenTTL  time.Duration
	validate  *validator.Validate
}

// NewDashboardAuthService expects a bcrypt hash. An empty hash disables
// dashboard login entirely.
func NewDashboardAuthService(username string, passHash []byte, signer TokenSigner, ttl time.Duration) *DashboardAuthService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &DashboardAuthService{
		username:  username,
		passHash:  passHash,
		now:       func() time.Time { return time.Now().UTC() },
		signToken: signer,
		tokenTTL:  ttl,
		validate:  validator.New(),
	}
}

// HashPassword returns a bcrypt hash suitable for the dashboard password setting.
func HashPassword(password string) ([]byte, error) {
	if strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("password required")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func (s *DashboardAuthService) Enabled() bool { return len(s.passHash) > 0 }

func (s *DashboardAuthService) Login(req LoginRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validate.Struct(req); err != nil {
		return nil, NewInvalidError("username/password required")
	}
	if !s.Enabled() {
		return nil, NewUnauthorizedError("dashboard login disabled")
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passHash, []byte(req.Password))
	if !userOK || passErr != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	token, err := s.signToken(s.username, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: s.now().Add(s.tokenTTL)}, nil
}

func (s *DashboardAuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
