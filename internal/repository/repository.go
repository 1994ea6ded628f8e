package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mr1hm/go-quake-risk/internal/models"
	"github.com/mr1hm/go-quake-risk/internal/severity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicatePhone = errors.New("phone number already registered")
)

type AlertFilter struct {
	Limit       int
	Since       *time.Time
	MinSeverity *severity.Tier
}

type AlertRepository interface {
	// AddAlert stores a unless an alert for the same earthquake exists.
	// It reports whether a row was written.
	AddAlert(ctx context.Context, a *models.Alert) (bool, error)
	ListAlerts(ctx context.Context, opts AlertFilter) ([]models.Alert, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}
