package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"` // "admin" | "manager" | "user"
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(uid, role string) (string, error) {
	if len(j.Secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	claims := Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(60*time.Second))

	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Minter issues tokens for one identity and reuses each until it is close to expiry.
// It satisfies rest.TokenSource.
type Minter struct {
	j    *JWTer
	uid  string
	role string

	mu  sync.Mutex
	tok string
	exp time.Time
}

func NewMinter(j *JWTer, uid, role string) *Minter {
	return &Minter{j: j, uid: uid, role: role}
}

func (m *Minter) Token(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// 提前 1/10 TTL 续签
	if m.tok != "" && time.Until(m.exp) > m.j.TTL/10 {
		return m.tok, nil
	}
	tok, err := m.j.Issue(m.uid, m.role)
	if err != nil {
		return "", err
	}
	m.tok, m.exp = tok, time.Now().Add(m.j.TTL)
	return tok, nil
}
