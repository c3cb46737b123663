package jwt

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	jwtgo "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"truco-server/internal/config"
)

// Issuer issues the JWT
const Issuer = "truco-server"

// Audience is the intended JWT audience
const Audience = "truco-players"

// TTL is how long a signed token stays valid
const TTL = 24 * time.Hour

// ErrInvalidSubject is returned when a token does not name a player
var ErrInvalidSubject = errors.New("token has no subject")

var publicKey *rsa.PublicKey
var privateKey *rsa.PrivateKey

// LoadKeys will load the public and private keys
// this method should only be called once.
func LoadKeys() error {
	cfg := config.Instance().JWT

	pub, err := loadPublicKey(cfg.PublicKey)
	if err != nil {
		return err
	}

	// the private key is only needed to issue tokens, which a server may not do
	var priv *rsa.PrivateKey
	if cfg.PrivateKey != "" {
		if priv, err = loadPrivateKey(cfg.PrivateKey); err != nil {
			return err
		}
	}

	SetKeys(priv, pub)
	return nil
}

// SetKeys replaces the keys used to sign and validate tokens
func SetKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey) {
	privateKey = priv
	publicKey = pub
}

// Sign will sign a JWT for the player ID
func Sign(playerID string) (string, error) {
	if privateKey == nil {
		panic("LoadKeys() not called")
	}

	now := time.Now()
	token := jwtgo.NewWithClaims(jwtgo.SigningMethodRS256, jwtgo.RegisteredClaims{
		Audience:  jwtgo.ClaimStrings{Audience},
		ID:        uuid.New().String(),
		IssuedAt:  jwtgo.NewNumericDate(now),
		ExpiresAt: jwtgo.NewNumericDate(now.Add(TTL)),
		Issuer:    Issuer,
		Subject:   playerID,
	})

	return token.SignedString(privateKey)
}

// ValidPlayerID will validate a signed JWT and return the player it was issued to
func ValidPlayerID(signedString string) (string, error) {
	if publicKey == nil {
		panic("LoadKeys() not called")
	}

	token, err := jwtgo.ParseWithClaims(signedString, &jwtgo.RegisteredClaims{}, func(token *jwtgo.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwtgo.SigningMethodRSA); !ok {
			return nil, errors.New("expected RS256 signing method")
		}

		return publicKey, nil
	})

	if err != nil {
		return "", err
	}

	if token.Valid {
		if claims, ok := token.Claims.(*jwtgo.RegisteredClaims); ok {
			if !containsAudience(claims.Audience, Audience) {
				return "", errors.New("invalid audience")
			}

			if claims.Issuer != Issuer {
				return "", errors.New("invalid issuer")
			}

			if claims.Subject == "" {
				return "", ErrInvalidSubject
			}

			return claims.Subject, nil
		}

		return "", fmt.Errorf("expected jwt.RegisteredClaims, got %T", token.Claims)
	}

	logrus.Warn("token claims were not valid. did not expect to reach this code")
	return "", errors.New("claims were not valid")
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read public key: %w", err)
	}

	key, err := jwtgo.ParseRSAPublicKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return key, nil
}

func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read private key: %w", err)
	}

	key, err := jwtgo.ParseRSAPrivateKeyFromPEM(b)
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA private key: %w", err)
	}

	return key, nil
}

func containsAudience(audiences jwtgo.ClaimStrings, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}
