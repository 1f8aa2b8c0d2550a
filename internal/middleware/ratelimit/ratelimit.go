package rateLimit

import (
	"net/http"
	"time"

	"user_service/internal/config"

	httprate "github.com/go-chi/httprate"
)

// Лимиты считаются по паре (IP клиента, endpoint); ключ по IP
// подменяется через WithKeyFunc для развертываний за прокси.

func Register(cfg config.RateLimit) func(http.Handler) http.Handler {
	return limitByIP(cfg.RegisterPerMinute, time.Minute)
}

func Login(cfg config.RateLimit) func(http.Handler) http.Handler {
	return limitByIP(cfg.LoginPerMinute, time.Minute)
}

func User(cfg config.RateLimit) func(http.Handler) http.Handler {
	return limitByIP(cfg.UserPerMinute, time.Minute)
}

// * WithKeyFunc собирает лимитер с произвольным ключом клиента
// (например, по заголовку X-Forwarded-For или идентификатору сессии).
func WithKeyFunc(limit int, window time.Duration, keyFn httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(keyFn, httprate.KeyByEndpoint),
	)
}

func limitByIP(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window)
}
