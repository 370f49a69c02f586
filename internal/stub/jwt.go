package stub

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

type claims struct {
	UserID          string `json:"userId"`
	ChurchID        string `json:"churchId"`
	IsPlatformAdmin bool   `json:"isPlatformAdmin"`
	jwt.RegisteredClaims
}

func (s *Server) mintToken(u *User) (string, error) {
	now := time.Now()
	c := claims{
		UserID:          u.ID,
		ChurchID:        u.ChurchID,
		IsPlatformAdmin: u.IsPlatformAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(s.opts.JWTSecret))
}

func (s *Server) parseToken(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(s.opts.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	return c, nil
}
