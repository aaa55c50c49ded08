package models

import "time"

// APIKey authorizes machine access to the JSON API for a set of scopes.
type APIKey struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	KeyHash   string    `db:"key_hash"`
	Scopes    []string  `db:"scopes"`
	CreatedAt time.Time `db:"created"`
}

func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
