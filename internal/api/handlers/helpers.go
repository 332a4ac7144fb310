package handlers

import (
	"context"
	"fmt"

	"github.com/rgukt-papers/paperhub/internal/core"
	"github.com/rgukt-papers/paperhub/internal/models"
)

// authorForAccount resolves the community profile behind an account,
// creating one from the account's own details on first contribution.
func authorForAccount(ctx context.Context, db core.DbClient, accountID string) (*models.User, error) {
	acc, err := db.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("account %s not found", accountID)
	}

	if acc.ProfileID != "" {
		profile, err := db.GetProfile(ctx, acc.ProfileID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			return profile, nil
		}
	}

	profile := &models.User{
		Name:      acc.Name,
		AvatarURL: acc.Picture,
	}
	if profile.Name == "" {
		profile.Name = acc.Email
	}
	if err := db.CreateProfile(ctx, acc.ID, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
