package auth

import (
    "context"
    "crypto/rand"  // secure random number generation for token identifiers
    "encoding/hex" // hex encoding of token identifiers
    "fmt"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

    "github.com/iliyamo/movie-auth-service/internal/model"
)

// Token type values carried in the "type" claim.  Every issued token is
// stamped as exactly one of the two, and each operation checks the stamp
// before trusting the rest of the payload.
const (
    TypeAccess  = "access"
    TypeRefresh = "refresh"
)

// Claims is the payload carried by both token kinds.  Access tokens carry
// the full set: subject (username), user id, a point-in-time snapshot of
// the user's role names, their own identifier (jti) and the identifier of
// the paired refresh token (rjti).  Refresh tokens carry only the subject
// and their own jti so a leaked refresh token exposes as little as
// possible.
type Claims struct {
    UserID    uint64   `json:"user_id,omitempty"` // access only
    Roles     []string `json:"roles,omitempty"`   // access only, snapshot at issuance
    TokenType string   `json:"type"`              // "access" | "refresh"
    RefreshID string   `json:"rjti,omitempty"`    // access only, jti of the paired refresh token
    jwt.RegisteredClaims
}

// TokenPair bundles a freshly issued access/refresh pair together with the
// expiry times reported back to the client.
type TokenPair struct {
    AccessToken  string
    RefreshToken string
    AccessExp    time.Time
    RefreshExp   time.Time
}

// Revoker is the deny-list consulted on every decode.  Presence of a jti
// before its TTL elapses is authoritative "revoked"; an error means the
// cache could not be reached and the caller must fail the request rather
// than skip the check.
type Revoker interface {
    Revoke(ctx context.Context, jti string, ttl time.Duration) error
    IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenService issues, decodes and revokes signed token pairs.  It holds no
// per-request state: just the key pair, the configured lifetimes and the
// revocation cache handle.
type TokenService struct {
    keys       KeyPair
    accessTTL  time.Duration
    refreshTTL time.Duration
    revoker    Revoker
    now        func() time.Time // overridable in tests
}

func NewTokenService(keys KeyPair, accessTTL, refreshTTL time.Duration, revoker Revoker) *TokenService {
    return &TokenService{
        keys:       keys,
        accessTTL:  accessTTL,
        refreshTTL: refreshTTL,
        revoker:    revoker,
        now:        func() time.Time { return time.Now().UTC() },
    }
}

// Issue builds and signs an access/refresh pair for a user.  Both tokens
// share the same iat; the access token additionally records the refresh
// token's jti so a later logout can revoke the whole pair from the access
// token alone.  The embedded role list is a snapshot: role changes made
// after issuance only take effect when the client refreshes.
func (s *TokenService) Issue(user model.User) (TokenPair, error) {
    jtiAccess, err := randomHex(16)
    if err != nil {
        return TokenPair{}, err
    }
    jtiRefresh, err := randomHex(16)
    if err != nil {
        return TokenPair{}, err
    }

    now := s.now()
    accessExp := now.Add(s.accessTTL)
    refreshExp := now.Add(s.refreshTTL)

    access := Claims{
        UserID:    user.ID,
        Roles:     user.RoleNames(),
        TokenType: TypeAccess,
        RefreshID: jtiRefresh,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   user.Username,
            ID:        jtiAccess,
            ExpiresAt: jwt.NewNumericDate(accessExp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }
    refresh := Claims{
        TokenType: TypeRefresh,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   user.Username,
            ID:        jtiRefresh,
            ExpiresAt: jwt.NewNumericDate(refreshExp),
            IssuedAt:  jwt.NewNumericDate(now),
        },
    }

    accessSigned, err := jwt.NewWithClaims(jwt.SigningMethodRS256, access).SignedString(s.keys.Private)
    if err != nil {
        return TokenPair{}, err
    }
    refreshSigned, err := jwt.NewWithClaims(jwt.SigningMethodRS256, refresh).SignedString(s.keys.Private)
    if err != nil {
        return TokenPair{}, err
    }

    return TokenPair{
        AccessToken:  accessSigned,
        RefreshToken: refreshSigned,
        AccessExp:    accessExp,
        RefreshExp:   refreshExp,
    }, nil
}

// Decode verifies a token's signature and expiry with the public key and
// then checks the token's own jti against the revocation cache.  A cache
// error is returned as-is: the deny list is security authoritative and the
// check is never silently skipped.
func (s *TokenService) Decode(ctx context.Context, raw string) (*Claims, error) {
    tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
        // Reject any signing method other than RSA; verification always
        // uses the public key.
        if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
            return nil, ErrInvalidToken
        }
        return s.keys.Public, nil
    })
    if err != nil || !tok.Valid {
        return nil, ErrInvalidToken
    }
    claims, ok := tok.Claims.(*Claims)
    if !ok || claims.ID == "" {
        return nil, ErrInvalidToken
    }

    revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
    if err != nil {
        return nil, fmt.Errorf("revocation check: %w", err)
    }
    if revoked {
        return nil, ErrTokenRevoked
    }
    return claims, nil
}

// Revoke places an access token's identifiers on the deny list.  The
// access jti lives for the token's remaining lifetime so entries expire on
// their own.  The paired refresh jti is revoked for the configured refresh
// TTL, an upper bound of its remaining lifetime: the access token does not
// carry the refresh expiry.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
    remaining := s.remaining(claims)
    if remaining <= 0 {
        return nil
    }
    if err := s.revoker.Revoke(ctx, claims.ID, remaining); err != nil {
        return err
    }
    if claims.RefreshID != "" {
        if err := s.revoker.Revoke(ctx, claims.RefreshID, s.refreshTTL); err != nil {
            return err
        }
    }
    return nil
}

// RevokeRefresh retires a used refresh token for its remaining lifetime.
// Called on every refresh so a rotated-away token cannot be replayed.
func (s *TokenService) RevokeRefresh(ctx context.Context, claims *Claims) error {
    remaining := s.remaining(claims)
    if remaining <= 0 {
        return nil
    }
    return s.revoker.Revoke(ctx, claims.ID, remaining)
}

// AccessTTL reports the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

func (s *TokenService) remaining(claims *Claims) time.Duration {
    if claims.ExpiresAt == nil {
        return 0
    }
    return claims.ExpiresAt.Time.Sub(s.now())
}

// randomHex returns a hex‑encoded string generated from n bytes of
// cryptographically secure random data.  It is used to produce token
// identifiers.  If the random number generator fails, an error is returned.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
