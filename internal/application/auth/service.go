package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-phone-auth/internal/domain"
	"github.com/go-phone-auth/internal/pkg/id"
	"github.com/go-phone-auth/internal/pkg/otp"
	"github.com/go-phone-auth/internal/pkg/redact"
	"github.com/go-phone-auth/internal/pkg/validate"
)

const (
	MsgCodeSent            = "we sent an SMS with the activation code to your phone %s"
	MsgLoginSuccess        = "login success"
	MsgRegistrationSuccess = "registration success"
)

// DefaultCodeTTL is how long a requested code stays valid.
const DefaultCodeTTL = 600 * time.Second

type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type VerifyRequest struct {
	PhoneNumber string   `json:"phone_number" validate:"required,phone"`
	Code        otp.Code `json:"code" validate:"required"`
}

// VerifyResult is returned by a successful Verify.
type VerifyResult struct {
	Message string
	Token   string
	User    *domain.User
}

type Service interface {
	// RequestCode issues a code for phone and remembers fullName for the
	// account created on first successful verification.
	RequestCode(ctx context.Context, phone string, fullName *string) (string, error)
	// RequestLogin issues a code for an already registered phone.
	RequestLogin(ctx context.Context, phone string) (string, error)
	// Verify consumes the code and returns a session token.
	Verify(ctx context.Context, phone, code string) (*VerifyResult, error)
}

// CodeStore holds at most one pending verification per phone number.
type CodeStore interface {
	// Put stores v under v.PhoneNumber, replacing any previous entry.
	Put(ctx context.Context, v *domain.PendingVerification, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*domain.PendingVerification, error)
	Delete(ctx context.Context, phone string) error
	// Consume atomically removes and returns the entry when code matches.
	// It returns domain.ErrCodeNotFound or domain.ErrCodeMismatch otherwise.
	Consume(ctx context.Context, phone, code string) (*domain.PendingVerification, error)
}

// Notifier delivers a code out of band. Send must not block on delivery.
type Notifier interface {
	Send(phone, code string)
}

type userStore interface {
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}

type tokenIssuer interface {
	Issue(u *domain.User) (string, error)
}

type ServiceDeps struct {
	Codes       CodeStore
	UserRepo    userStore
	Tokens      tokenIssuer
	Notifier    Notifier
	CodeTTL     time.Duration
	AdminPhones []string
	Now         func() time.Time
}

type service struct {
	codes    CodeStore
	userRepo userStore
	tokens   tokenIssuer
	notifier Notifier
	codeTTL  time.Duration
	admins   map[string]struct{}
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:    deps.Codes,
		userRepo: deps.UserRepo,
		tokens:   deps.Tokens,
		notifier: deps.Notifier,
		codeTTL:  deps.CodeTTL,
		admins:   make(map[string]struct{}, len(deps.AdminPhones)),
		now:      deps.Now,
	}
	if s.codeTTL <= 0 {
		s.codeTTL = DefaultCodeTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, p := range deps.AdminPhones {
		s.admins[p] = struct{}{}
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, phone string, fullName *string) (string, error) {
	if !validate.Phone(phone) {
		return "", fmt.Errorf("invalid phone number: %w", domain.ErrBadRequest)
	}
	return s.issue(ctx, &domain.PendingVerification{PhoneNumber: phone, FullName: fullName})
}

func (s *service) RequestLogin(ctx context.Context, phone string) (string, error) {
	if !validate.Phone(phone) {
		return "", fmt.Errorf("invalid phone number: %w", domain.ErrBadRequest)
	}
	u, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return s.issue(ctx, &domain.PendingVerification{PhoneNumber: phone, UserID: u.UserID, FullName: u.FullName})
}

// issue stores a fresh code for v.PhoneNumber, overwriting any earlier one,
// and hands it to the notifier without waiting for delivery.
func (s *service) issue(ctx context.Context, v *domain.PendingVerification) (string, error) {
	code, err := otp.Generate()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	v.Code = code
	v.CreatedAt = now
	v.ExpiresAt = now.Add(s.codeTTL).Unix()
	if err := s.codes.Put(ctx, v, s.codeTTL); err != nil {
		return "", fmt.Errorf("store verification: %w", err)
	}
	s.notifier.Send(v.PhoneNumber, code)
	slog.Info("verification code issued", "phone", redact.Phone(v.PhoneNumber), "login", v.UserID != "")
	return fmt.Sprintf(MsgCodeSent, v.PhoneNumber), nil
}

func (s *service) Verify(ctx context.Context, phone, code string) (*VerifyResult, error) {
	v, err := s.codes.Consume(ctx, phone, code)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) || errors.Is(err, domain.ErrCodeMismatch) {
			return nil, err
		}
		return nil, fmt.Errorf("consume verification: %w", err)
	}

	u, err := s.userRepo.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		return s.session(u, MsgLoginSuccess)
	case errors.Is(err, domain.ErrNotFound):
		return s.register(ctx, v)
	default:
		return nil, fmt.Errorf("lookup user: %w", err)
	}
}

func (s *service) register(ctx context.Context, v *domain.PendingVerification) (*VerifyResult, error) {
	now := s.now().UTC()
	u := &domain.User{
		UserID:      id.New(),
		PhoneNumber: v.PhoneNumber,
		FullName:    v.FullName,
		Role:        s.roleFor(v.PhoneNumber),
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.userRepo.Create(ctx, u)
	if errors.Is(err, domain.ErrConflict) {
		// Another verification registered this phone first; log in as that user.
		existing, gErr := s.userRepo.GetByPhone(ctx, v.PhoneNumber)
		if gErr != nil {
			return nil, fmt.Errorf("lookup user after conflict: %w", gErr)
		}
		return s.session(existing, MsgLoginSuccess)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	slog.Info("user registered", "user_id", u.UserID, "role", u.Role)
	return s.session(u, MsgRegistrationSuccess)
}

func (s *service) session(u *domain.User, msg string) (*VerifyResult, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &VerifyResult{Message: msg, Token: token, User: u}, nil
}

func (s *service) roleFor(phone string) string {
	if _, ok := s.admins[phone]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}
