package models

import "time"

// Tournament is an asynchronous tournament hosted in a Discord guild.
type Tournament struct {
	ID                int       `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Active            bool      `json:"active" db:"active"`
	GuildID           int64     `json:"guild_id" db:"guild_id"`
	ChannelID         int64     `json:"channel_id" db:"channel_id"`
	OwnerID           int64     `json:"owner_id" db:"owner_id"`
	AllowedReattempts int       `json:"allowed_reattempts" db:"allowed_reattempts"`
	CreatedAt         time.Time `json:"created" db:"created"`
	UpdatedAt         time.Time `json:"updated" db:"updated"`
}
