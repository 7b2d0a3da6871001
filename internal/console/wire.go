package console

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-admin-console/internal/core/auth"
	"user-admin-console/internal/core/config"
	mdw "user-admin-console/internal/transport/http/middleware"
	"user-admin-console/internal/transport/rest"
	"user-admin-console/internal/userapi"
)

const consoleUID = "console"

// NewUsersClient builds the users API client from config: outgoing middleware,
// then a bearer token when one is configured.
func NewUsersClient(cfg *config.Config, l *zap.Logger) (*userapi.Client, error) {
	mws := []mdw.Middleware{mdw.RequestID(), mdw.AccessLog(l), mdw.Metrics()}
	if cfg.API.RateRPS > 0 {
		mws = append(mws, mdw.RateLimit(rate.Limit(cfg.API.RateRPS), max(1, cfg.API.Burst)))
	}
	if cfg.API.MaxInFlight > 0 {
		mws = append(mws, mdw.ConcurrencyLimit(cfg.API.MaxInFlight))
	}
	if d := cfg.API.Timeout(); d > 0 {
		mws = append(mws, mdw.Timeout(d))
	}

	opts := []rest.Option{rest.WithLogger(l), rest.WithMiddleware(mws...)}
	switch {
	case cfg.API.Token != "":
		opts = append(opts, rest.WithTokenSource(rest.StaticToken(cfg.API.Token)))
	case cfg.JWT.Secret != "":
		jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
		opts = append(opts, rest.WithTokenSource(auth.NewMinter(jwter, consoleUID, auth.RoleAdmin)))
	}

	rc, err := rest.NewClient(cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return userapi.New(rc), nil
}
