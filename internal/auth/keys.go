package auth

import (
    "crypto/rsa"
    "fmt"
    "os"

    "github.com/golang-jwt/jwt/v5"
)

// KeyPair holds the RSA keys used for token signing and verification.  Only
// the issuing service needs the private half; the movie and comment
// services verify tokens with the public key alone and never see the
// signing secret.
type KeyPair struct {
    Private *rsa.PrivateKey
    Public  *rsa.PublicKey
}

// LoadKeyPair reads and parses the PEM encoded key files named in the
// configuration.
func LoadKeyPair(privateFile, publicFile string) (KeyPair, error) {
    privPEM, err := os.ReadFile(privateFile)
    if err != nil {
        return KeyPair{}, fmt.Errorf("read private key: %w", err)
    }
    priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
    if err != nil {
        return KeyPair{}, fmt.Errorf("parse private key: %w", err)
    }
    pubPEM, err := os.ReadFile(publicFile)
    if err != nil {
        return KeyPair{}, fmt.Errorf("read public key: %w", err)
    }
    pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
    if err != nil {
        return KeyPair{}, fmt.Errorf("parse public key: %w", err)
    }
    return KeyPair{Private: priv, Public: pub}, nil
}
