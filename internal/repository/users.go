package repository

import (
	"context"
	"strings"

	"github.com/prn-tf/inkstand/internal/domain"
)

// Users returns every stored user.
func (r *Repository) Users(ctx context.Context) []domain.User {
	return list[domain.User](ctx, r, KeyUsers)
}

// SetUsers replaces the whole collection.
func (r *Repository) SetUsers(ctx context.Context, users []domain.User) {
	r.mutate(ctx, KeyUsers, func() {
		kvSet(ctx, r, KeyUsers, users)
	})
}

// UserByID returns nil if no user has id.
func (r *Repository) UserByID(ctx context.Context, id string) *domain.User {
	for _, u := range r.Users(ctx) {
		if u.ID == id {
			return &u
		}
	}
	return nil
}

// UserByEmailOrUsername matches either field case-insensitively.
func (r *Repository) UserByEmailOrUsername(ctx context.Context, identifier string) *domain.User {
	for _, u := range r.Users(ctx) {
		if strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.Username, identifier) {
			return &u
		}
	}
	return nil
}

// UpdateUser replaces the user with the same id.
func (r *Repository) UpdateUser(ctx context.Context, user domain.User) {
	update(ctx, r, KeyUsers, func(users []domain.User) ([]domain.User, bool) {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = user
				return users, true
			}
		}
		return users, false
	})
}
