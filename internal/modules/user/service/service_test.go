package service

import (
	"testing"

	"github.com/subonly/gate/internal/modules/user/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	repo, err := repository.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	return New(repo)
}

func TestTouchRecordsUser(t *testing.T) {
	svc := newTestService(t)

	svc.Touch(42, "alice")

	users, err := svc.GetAllUsers()
	if err != nil {
		t.Fatalf("GetAllUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].ID != 42 || users[0].Username != "alice" {
		t.Errorf("unexpected user record: %+v", users[0])
	}
	if users[0].FirstSeen.IsZero() || users[0].LastSeen.IsZero() {
		t.Error("expected first and last seen timestamps to be set")
	}
}

func TestTouchKeepsFirstSeen(t *testing.T) {
	svc := newTestService(t)

	svc.Touch(42, "alice")

	users, _ := svc.GetAllUsers()
	firstSeen := users[0].FirstSeen

	svc.Touch(42, "alice_renamed")

	users, err := svc.GetAllUsers()
	if err != nil {
		t.Fatalf("GetAllUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user after second touch, got %d", len(users))
	}
	if !users[0].FirstSeen.Equal(firstSeen) {
		t.Errorf("FirstSeen changed on second touch: %v != %v", users[0].FirstSeen, firstSeen)
	}
	if users[0].Username != "alice_renamed" {
		t.Errorf("expected username update, got %q", users[0].Username)
	}
}

func TestIsAuthorized(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		userID  int64
		allowed []int64
		want    bool
	}{
		{"empty list allows everyone", 42, nil, true},
		{"listed user allowed", 42, []int64{1, 42}, true},
		{"unlisted user refused", 7, []int64{1, 42}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsAuthorized(tt.userID, tt.allowed); got != tt.want {
				t.Errorf("IsAuthorized(%d, %v) = %v, want %v", tt.userID, tt.allowed, got, tt.want)
			}
		})
	}
}
