package repo

import (
	"context"
	"time"

	"user-admin-console/internal/domain"
)

// SamplePassword is the password of every sample user.
const SamplePassword = "password123"

// SampleUsers returns the development data set, newest first, relative to now.
func SampleUsers(now time.Time) []domain.User {
	day := 24 * time.Hour
	mk := func(id, username, email, name string, role domain.Role, status domain.Status, age time.Duration) domain.User {
		at := now.Add(-age).UTC()
		return domain.User{
			ID: id, Username: username, Email: email, Name: name,
			Role: role, Status: status, CreatedAt: at, UpdatedAt: at,
		}
	}
	return []domain.User{
		mk("1a2b3c4d", "johndoe", "john@example.com", "홍길동", domain.RoleAdmin, domain.StatusActive, 0),
		mk("2b3c4d5e", "janedoe", "jane@example.com", "김영희", domain.RoleUser, domain.StatusActive, day),
		mk("3c4d5e6f", "bobsmith", "bob@example.com", "이철수", domain.RoleManager, domain.StatusPending, 2*day),
		mk("4d5e6f7g", "alicejones", "alice@example.com", "박지영", domain.RoleUser, domain.StatusInactive, 3*day),
	}
}

// SeedSamples loads SampleUsers into r.
func (r *UserRepo) SeedSamples(ctx context.Context) error {
	for _, u := range SampleUsers(r.now()) {
		if err := r.Seed(ctx, u, SamplePassword); err != nil {
			return err
		}
	}
	return nil
}
