// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded (via godotenv) before the
environment is consulted.

# Config Fields

  - Port: Server listen port (default: 8080)
  - DatabaseURL: SQLite file / PostgreSQL connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - TopPageLimit: default page size for top-level comment pagination
  - ReplyPageLimit: default page size for reply pagination
  - ReconnectMin / ReconnectMax: websocket client backoff bounds (1s / 10s)

# CLI Flags

	-p           Server port
	-d           Database URL
	-t           Database type
	-top-limit   Top-level comment page size
	-reply-limit Reply page size

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	TOP_PAGE_LIMIT   → -top-limit
	REPLY_PAGE_LIMIT → -reply-limit

CLI flags take precedence over environment variables.
*/
package cliparse
