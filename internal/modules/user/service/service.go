package service

import (
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/subonly/gate/internal/modules/user/domain"
	"github.com/subonly/gate/internal/modules/user/repository"
)

// Service tracks bot users and answers authorization checks.
type Service struct {
	repo repository.Repository
}

// New creates a new user service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Touch records that a user interacted with the bot, creating the record on
// first contact. Best-effort: a storage failure is logged, never surfaced,
// since tracking must not break command handling.
func (s *Service) Touch(userID int64, username string) {
	now := time.Now()

	user, err := s.repo.GetUser(userID)
	if err != nil {
		slog.Warn("Failed to load user record", "user_id", userID, "error", err)
		return
	}
	if user == nil {
		user = &domain.User{ID: userID, FirstSeen: now}
	}
	user.Username = username
	user.LastSeen = now

	if err := s.repo.SaveUser(user); err != nil {
		slog.Warn("Failed to save user record", "user_id", userID, "error", err)
	}
}

// GetAllUsers retrieves all known users.
func (s *Service) GetAllUsers() ([]*domain.User, error) {
	return s.repo.GetAllUsers()
}

// IsAuthorized checks whether a user may manage the gate. An empty
// allow-list means no restriction.
func (s *Service) IsAuthorized(userID int64, allowedUsers []int64) bool {
	if len(allowedUsers) == 0 {
		return true
	}
	return lo.Contains(allowedUsers, userID)
}
