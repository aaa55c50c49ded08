package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Dosada05/async-tournament/models"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "async_session"

const (
	jwtClaimDiscordUserID = "discord_user_id"
	jwtClaimName          = "name"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionTokens signs and verifies browser session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	return &SessionTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long an issued token stays valid.
func (t *SessionTokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for identity and returns it with its expiry.
// The Discord id is stored as a string, snowflakes do not survive a float64 round trip.
func (t *SessionTokens) Issue(identity models.DiscordIdentity) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)

	claims := jwt.MapClaims{
		jwtClaimDiscordUserID: strconv.FormatInt(identity.ID, 10),
		jwtClaimName:          identity.Name,
		"exp":                 expires.Unix(),
		"iat":                 now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns the identity it was issued for.
func (t *SessionTokens) Parse(raw string) (*models.DiscordIdentity, error) {
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	idClaim, ok := claims[jwtClaimDiscordUserID].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing '%s' claim", ErrInvalidSession, jwtClaimDiscordUserID)
	}
	id, err := strconv.ParseInt(idClaim, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: invalid '%s' claim %q", ErrInvalidSession, jwtClaimDiscordUserID, idClaim)
	}
	name, _ := claims[jwtClaimName].(string)

	return &models.DiscordIdentity{ID: id, Name: name}, nil
}
