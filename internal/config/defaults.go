package config

const (
	DefaultServerPort            = 8787
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "15s"
	DefaultServerWriteTimeout    = "30s"
	DefaultServerIdleTimeout     = "60s"
	DefaultServerShutdownTimeout = "10s"

	DefaultModel = "gpt-4o-mini"

	DefaultResolverMaxRetries     = 2
	DefaultResolverAttemptTimeout = "20s"

	DefaultTelegramUpdateTimeout = 60
	DefaultTelegramRole          = "STAFF"
)
