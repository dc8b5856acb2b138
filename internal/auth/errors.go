// Package auth implements the token and password core shared by the auth
// endpoints and the request middleware: bcrypt password hashing, RSA
// signed access/refresh token pairs, and the Redis-backed revocation
// check applied on every decode.
package auth

import "errors"

// ErrInvalidToken is returned when a token is malformed, carries a bad
// signature, or has expired.  Handlers translate it into HTTP 401.
var ErrInvalidToken = errors.New("invalid token")

// ErrTokenRevoked is returned when a structurally valid token's identifier
// is present in the revocation cache.  Handlers translate it into HTTP 401.
var ErrTokenRevoked = errors.New("token revoked")
