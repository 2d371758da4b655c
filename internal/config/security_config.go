package config

import (
	"time"
)

// SecurityConfig exposes the token-signing secret and the token
// lifetimes. The secret is read once at startup and injected into the
// token codec; nothing else in the process touches the environment for
// it.
type SecurityConfig interface {
	GetJWTSecret() string
	GetAccessTokenTTL() time.Duration
	GetRefreshTokenTTL() time.Duration
	GetVerificationTokenTTL() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetJWTSecret() string {
	return GetEnv("JWT_SECRET", "")
}

func (Security) GetAccessTokenTTL() time.Duration {
	return durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute)
}

func (Security) GetRefreshTokenTTL() time.Duration {
	return durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour)
}

func (Security) GetVerificationTokenTTL() time.Duration {
	return durationEnv("VERIFICATION_TOKEN_TTL", 3*time.Minute)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
