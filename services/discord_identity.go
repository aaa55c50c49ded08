package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Dosada05/async-tournament/models"
	"github.com/bwmarrin/discordgo"
)

// IdentityProvider resolves the Discord account that owns an OAuth2 access token.
type IdentityProvider interface {
	FetchIdentity(ctx context.Context, accessToken string) (*models.DiscordIdentity, error)
}

type discordIdentityProvider struct{}

func NewDiscordIdentityProvider() IdentityProvider {
	return discordIdentityProvider{}
}

func (discordIdentityProvider) FetchIdentity(ctx context.Context, accessToken string) (*models.DiscordIdentity, error) {
	session, err := discordgo.New("Bearer " + accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	user, err := session.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord user: %w", err)
	}

	id, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("unexpected discord user id %q: %w", user.ID, err)
	}

	name := user.GlobalName
	if name == "" {
		name = user.Username
	}
	return &models.DiscordIdentity{ID: id, Name: name}, nil
}
