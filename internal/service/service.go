// Package service holds the business rules between HTTP handlers and
// repositories.
package service

import (
	"context"
	"errors"
	"time"

	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/repository"
)

// EventPublisher is satisfied by *notifications.Notifier.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev notifications.Event) error
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
}

// minYear is the earliest accepted publication year.
const minYear = 1900

func validYear(year, nowYear int) bool {
	return year >= minYear && year <= nowYear+1
}

// loadActor resolves the calling user. A token for a user that no longer
// exists or was deactivated is treated as unauthenticated.
func loadActor(ctx context.Context, users repository.UserRepository, id uint) (*models.User, error) {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Unknown user")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is inactive")
	}
	return user, nil
}

func ownedBy(ownerID *uint, userID uint) bool {
	return ownerID != nil && *ownerID == userID
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}

type clock func() time.Time

func systemClock() time.Time { return time.Now() }
