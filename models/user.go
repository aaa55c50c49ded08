package models

import "strconv"

// User is a Discord member known to the bot.
type User struct {
	ID            int     `json:"id" db:"id"`
	DiscordUserID *int64  `json:"discord_user_id" db:"discord_user_id"`
	DisplayName   *string `json:"display_name" db:"display_name"`
	RtggID        *string `json:"rtgg_id" db:"rtgg_id"`
}

// Name returns the display name, falling back to the user id.
func (u *User) Name() string {
	if u == nil {
		return "unknown"
	}
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return "user #" + strconv.Itoa(u.ID)
}

// DiscordIdentity is the Discord account behind a browser session.
type DiscordIdentity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
