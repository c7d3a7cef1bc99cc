// Package config manages application configuration for the ambassador API.
//
// Configuration is read from environment variables. A .env file in the
// working directory is loaded first when it exists; variables already present
// in the environment always win over the file.
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: token signing secret, lifetime and issuer
//   - RateLimitConfig: per-client request limits
//   - JobsConfig: background job schedules
//   - AdminConfig: emails of the administrator accounts
//
// # Environment Variables
//
//	SERVER_PORT              - HTTP server port (default: 8080)
//	SERVER_ENV               - development, production or test
//	CORS_ALLOWED_ORIGINS     - comma separated origins
//	DB_HOST, DB_PORT         - SurrealDB address
//	DB_NAMESPACE, DB_DATABASE
//	DB_USER, DB_PASSWORD
//	DB_CONNECT_TIMEOUT       - startup connection budget (default: 15s)
//	DB_SLOW_QUERY            - slow statement log threshold (default: 500ms)
//	JWT_SECRET               - HMAC signing secret
//	JWT_EXPIRATION_HOURS     - token lifetime (default: 24)
//	JWT_ISSUER               - iss claim (default: ambassador-api)
//	RATE_LIMIT_RATE, RATE_LIMIT_WINDOW, RATE_LIMIT_BURST
//	MISSION_EXPIRY_INTERVAL  - how often overdue missions are expired
//	ADMIN_EMAILS             - comma separated accounts granted the admin role
//
// Validate reports every problem at once using errors.Join. Production
// refuses the built-in development JWT secret.
package config
