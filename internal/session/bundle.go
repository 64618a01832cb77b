// ABOUTME: Credential bundle held for one authenticated operator session
// ABOUTME: Mirrors the login/refresh response and the well-known storage keys

package session

import (
	"strconv"
	"time"
)

// Well-known storage keys. They match the field names of the login and
// refresh responses so a bundle round-trips through storage unchanged.
const (
	KeyStatus               = "status"
	KeyTokenType            = "tokenType"
	KeyAccessToken          = "accessToken"
	KeyAccessTokenExpireAt  = "accessTokenExpireAt"
	KeyRefreshToken         = "refreshToken"
	KeyRefreshTokenExpireAt = "refreshTokenExpireAt"
	KeyRole                 = "role"

	// KeyLoginMarker holds the session gate flag. It is not part of the bundle.
	KeyLoginMarker = "changexlogin"
)

// bundleKeys lists every key owned by a Bundle, in storage order.
var bundleKeys = []string{
	KeyStatus,
	KeyTokenType,
	KeyAccessToken,
	KeyAccessTokenExpireAt,
	KeyRefreshToken,
	KeyRefreshTokenExpireAt,
	KeyRole,
}

// Bundle is the full set of token, expiry and role fields for one session.
// Expiry fields are epoch milliseconds.
type Bundle struct {
	Status               string `json:"status"`
	TokenType            string `json:"tokenType"`
	AccessToken          string `json:"accessToken"`
	AccessTokenExpireAt  int64  `json:"accessTokenExpireAt"`
	RefreshToken         string `json:"refreshToken"`
	RefreshTokenExpireAt int64  `json:"refreshTokenExpireAt"`
	Role                 string `json:"role"`
}

// Empty reports whether the bundle carries neither token.
func (b Bundle) Empty() bool {
	return b.AccessToken == "" && b.RefreshToken == ""
}

// AccessExpiry returns the access token expiry, zero when unknown.
func (b Bundle) AccessExpiry() time.Time {
	return fromMillis(b.AccessTokenExpireAt)
}

// RefreshExpiry returns the refresh token expiry, zero when unknown.
func (b Bundle) RefreshExpiry() time.Time {
	return fromMillis(b.RefreshTokenExpireAt)
}

// AccessExpired reports whether the access token expiry has passed at now.
// An unknown expiry is never considered expired; the server decides.
func (b Bundle) AccessExpired(now time.Time) bool {
	exp := b.AccessExpiry()
	return !exp.IsZero() && now.After(exp)
}

// fields flattens the bundle into storage values keyed by bundleKeys.
func (b Bundle) fields() map[string]string {
	return map[string]string{
		KeyStatus:               b.Status,
		KeyTokenType:            b.TokenType,
		KeyAccessToken:          b.AccessToken,
		KeyAccessTokenExpireAt:  strconv.FormatInt(b.AccessTokenExpireAt, 10),
		KeyRefreshToken:         b.RefreshToken,
		KeyRefreshTokenExpireAt: strconv.FormatInt(b.RefreshTokenExpireAt, 10),
		KeyRole:                 b.Role,
	}
}

// bundleFromFields rebuilds a bundle from storage values. Missing or
// malformed expiries decode as zero.
func bundleFromFields(values map[string]string) Bundle {
	return Bundle{
		Status:               values[KeyStatus],
		TokenType:            values[KeyTokenType],
		AccessToken:          values[KeyAccessToken],
		AccessTokenExpireAt:  parseMillis(values[KeyAccessTokenExpireAt]),
		RefreshToken:         values[KeyRefreshToken],
		RefreshTokenExpireAt: parseMillis(values[KeyRefreshTokenExpireAt]),
		Role:                 values[KeyRole],
	}
}

func parseMillis(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
