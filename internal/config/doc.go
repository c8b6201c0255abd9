// Package config manages application configuration for the lending API.
//
// The config package loads and validates configuration from environment
// variables. An optional .env file is read first with godotenv; values
// already present in the environment take precedence.
//
// # Configuration Loading
//
//	cfg, err := config.Load()
//	if err := cfg.Validate(); err != nil {
//	    // every problem is reported at once
//	}
//
// # Configuration Groups
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - StoreConfig: backend selection (memory, sqlite, postgres, surreal) and book cache
//   - DatabaseConfig: SurrealDB connection settings
//   - RabbitConfig: event publishing
//   - RateLimitConfig: per-client request limits
//
// # Environment Variables
//
//	SERVER_PORT           - HTTP server port (default: 8080)
//	SERVER_TRUST_PROXY    - read client addresses from X-Forwarded-For (default: false)
//	STORE_BACKEND         - memory | sqlite | postgres | surreal (default: memory)
//	SQLITE_PATH           - SQLite file (default: data/lending.db)
//	POSTGRES_DSN          - PostgreSQL connection string
//	POSTGRES_DRIVER       - postgres (lib/pq) or pgx (default: postgres)
//	BOOK_CACHE_SIZE       - LRU size for book lookups, 0 disables
//	RABBIT_URL            - AMQP URL, empty disables publishing
//	RATE_LIMIT_PER_MINUTE - sustained reserve/cancel requests per client host
//	RATE_LIMIT_BURST      - requests a client host may send at once
//	LOG_LEVEL             - debug | info | warn | error
package config
