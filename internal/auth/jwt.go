package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// GenerateToken issues an HS256 token carrying the user and the firm
// (tenant) the user belongs to.
func GenerateToken(secret []byte, userID, firmID int) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"firm_id": firmID,
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseToken validates the token and extracts the user and firm ids.
func ParseToken(secret []byte, tokenString string) (userID, firmID int, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return 0, 0, err
	}
	if !token.Valid {
		return 0, 0, errInvalidToken
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, 0, errInvalidToken
	}
	uidFloat, ok := data["user_id"].(float64)
	if !ok {
		return 0, 0, errInvalidToken
	}
	fidFloat, ok := data["firm_id"].(float64)
	if !ok {
		return 0, 0, errInvalidToken
	}
	return int(uidFloat), int(fidFloat), nil
}
