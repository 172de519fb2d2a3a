package service

import (
	"context"
	"fmt"

	"github.com/99minutos/marketplace-console/internal/core/domain"
	"github.com/99minutos/marketplace-console/internal/core/ports"
	"github.com/99minutos/marketplace-console/internal/core/query"
	"github.com/99minutos/marketplace-console/internal/core/validation"
)

// Profile shows the current user as the backend knows it.
func (v *Views) Profile(ctx context.Context) (*ports.ProfilePage, error) {
	if _, err := v.currentUser(); err != nil {
		return nil, err
	}
	user, err := query.Fetch(ctx, v.cache, query.KeyCurrentUser, v.api.CurrentUser)
	if err != nil {
		return nil, v.auth.HandleError(ctx, err)
	}
	return &ports.ProfilePage{
		User:      user,
		RoleBadge: domain.Badge{Label: user.Role.Label(), Tone: roleTone(user.Role)},
	}, nil
}

// UpdateProfile saves the username and email and refreshes the session user.
func (v *Views) UpdateProfile(ctx context.Context, form validation.ProfileForm) (*domain.User, error) {
	current, err := v.currentUser()
	if err != nil {
		return nil, err
	}
	if err := v.validator.Struct(form); err != nil {
		return nil, err
	}

	var updated *domain.User
	err = v.mutate(ctx, "update profile", "Profile updated successfully!", "Failed to update profile",
		func(ctx context.Context) (err error) {
			updated, err = v.api.UpdateUser(ctx, current.ID, domain.UserUpdate{
				Email:    &form.Email,
				Username: &form.Username,
			})
			return err
		}, query.KeyCurrentUser, query.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", current.ID, err)
	}
	v.store.SetUser(updated)
	return updated, nil
}
