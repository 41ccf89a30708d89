// Package config handles configuration loading for grove-ledger.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package validates required fields and parses duration strings.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from GROVE_LEDGER_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/grove-ledger/config.yaml
//  3. ~/.config/grove-ledger/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${GROVE_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server:
//
//	server:
//	  addr: "0.0.0.0:8080"
//	  read_header_timeout: "10s"
//	  shutdown_timeout: "5s"
//
// Database:
//
//	database:
//	  path: "/var/lib/grove-ledger/ledger.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${GROVE_JWT_SECRET}"  # min 32 bytes, enforced by the auth layer
//	  owner_id: "owner-..."              # platform owner identity
//	  token_ttl: "720h"                  # default TTL for minted tokens
//
// Completion read cache (optional):
//
//	cache:
//	  enabled: false
//	  addr: "localhost:6379"
//	  password: ""
//	  db: 0
//	  ttl: "10m"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "color" # color, text, json
package config
