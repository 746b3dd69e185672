package towerapi

import (
	"context"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login posts credentials to /auth/login and returns the issued token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	var result model.LoginResult
	if err := c.d.Post(ctx, "/auth/login", creds, &result); err != nil {
		return model.LoginResult{}, err
	}
	return result, nil
}

// ChangePassword puts the current and new password to /auth/change-password.
// The backend answers a wrong current password with 401, so this call never
// fires the unauthorized hook.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.d.Put(withoutUnauthorizedHook(ctx), "/auth/change-password", changePasswordRequest{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}, nil)
}
