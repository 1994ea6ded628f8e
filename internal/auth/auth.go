// Package auth registers users and checks their credentials. It issues no
// sessions or tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr1hm/go-quake-risk/internal/metrics"
	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/repository"
)

var (
	ErrMissingFields   = errors.New("missing required fields")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrPhoneTaken      = errors.New("phone number already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("wrong password")
)

// MaxPasswordBytes is bcrypt's input limit.
const MaxPasswordBytes = 72

const (
	actionRegister = "register"
	actionLogin    = "login"
)

// Identity is what a successful login reveals about the user.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Service struct {
	users   repository.UserRepository
	cost    int
	metrics *metrics.Metrics
	clock   clockwork.Clock
}

type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func NewService(users repository.UserRepository, cost int, m *metrics.Metrics, opts ...Option) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	s := &Service{
		users:   users,
		cost:    cost,
		metrics: m,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, name, phone, password string) (*models.User, error) {
	u, err := s.register(ctx, strings.TrimSpace(name), strings.TrimSpace(phone), password)
	s.observe(actionRegister, err)
	return u, err
}

func (s *Service) register(ctx context.Context, name, phone, password string) (*models.User, error) {
	if name == "" || phone == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	slog.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) Login(ctx context.Context, phone, password string) (Identity, error) {
	id, err := s.login(ctx, strings.TrimSpace(phone), password)
	s.observe(actionLogin, err)
	return id, err
}

func (s *Service) login(ctx context.Context, phone, password string) (Identity, error) {
	if phone == "" || password == "" {
		return Identity{}, ErrMissingFields
	}

	u, err := s.users.GetUserByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("error looking up user: %w", err)
	}
	if u.PasswordHash == "" {
		return Identity{}, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Identity{}, ErrWrongPassword
		}
		return Identity{}, fmt.Errorf("error comparing password: %w", err)
	}

	return Identity{ID: u.ID, Name: u.Name, Phone: u.Phone}, nil
}

func (s *Service) observe(action string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrPhoneTaken), errors.Is(err, ErrPasswordTooLong):
		outcome = "rejected"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrWrongPassword):
		outcome = "denied"
	default:
		outcome = "error"
	}
	s.metrics.AuthAttempts.WithLabelValues(action, outcome).Inc()
}
