package auth

import (
	"aligner-lab/internal/config"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func secret() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

func GenerateJWT(staffID uint64) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": staffID,
		"exp":      time.Now().Add(time.Hour * 24 * 3).Unix(), // expires in 3 days
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	// parse token
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret(), nil
	})

	if err != nil {
		return nil, err
	}

	// isValid
	if !jwtToken.Valid {
		return nil, errors.New("token invalid")
	}

	return jwtToken, nil
}

// StaffIDFromToken extracts the staff id claim from a verified token
func StaffIDFromToken(token *jwt.Token) (uint64, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	raw, ok := claims["staff_id"].(float64)
	if !ok {
		return 0, errors.New("staff_id claim missing")
	}
	return uint64(raw), nil
}
