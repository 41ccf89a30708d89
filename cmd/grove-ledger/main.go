// ABOUTME: Entry point for the grove-ledger achievement server
// ABOUTME: Serves the HTTP API and provides init, bootstrap, and health commands

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/grovehq/grove-ledger/internal/api"
	"github.com/grovehq/grove-ledger/internal/auth"
	"github.com/grovehq/grove-ledger/internal/cache"
	"github.com/grovehq/grove-ledger/internal/clock"
	"github.com/grovehq/grove-ledger/internal/config"
	"github.com/grovehq/grove-ledger/internal/ledger"
	"github.com/grovehq/grove-ledger/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                         _             _
  __ _  _ __   ___  __   __  ___        | |   ___   __| |  __ _   ___  _ __
 / _' || '__| / _ \ \ \ / / / _ \ _____ | |  / _ \ / _' | / _' | / _ \| '__|
| (_| || |   | (_) | \ V / |  __/|_____|| | |  __/| (_| || (_| ||  __/| |
 \__, ||_|    \___/   \_/   \___|       |_|  \___| \__,_| \__, | \___||_|
 |___/                                                    |___/
`

// getConfigPath returns the path to the ledger config file.
// Priority: GROVE_LEDGER_CONFIG env var > XDG_CONFIG_HOME/grove-ledger/config.yaml > ~/.config/grove-ledger/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("GROVE_LEDGER_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "grove-ledger", "config.yaml")
}

// getDataPath returns the path to the ledger data directory.
// Priority: XDG_DATA_HOME/grove-ledger > ~/.local/share/grove-ledger
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "grove-ledger")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: grove-ledger <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                  Start the ledger server")
		fmt.Println("  init                   Create a new config file interactively")
		fmt.Println("  bootstrap [--name NAME]  Create the owner identity and a token")
		fmt.Println("  health                 Check server health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger; packages pick it up through slog.Default
	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Startup info
	green := color.New(color.FgGreen)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)

	if cfg.Cache.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Cache:     ")
		cyan.Print(cfg.Cache.Addr)
		fmt.Println()
	}

	fmt.Println()

	logger.Info("starting grove-ledger",
		"config", configPath,
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
	)

	// Open the store
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	// Token verification
	tokens, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	// Optional completion read cache
	var completions *cache.CompletionCache
	if cfg.Cache.Enabled {
		completions, err = cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			return fmt.Errorf("connecting cache: %w", err)
		}
		defer func() { _ = completions.Close() }()
	}

	// Assemble the ledger service and API server
	svc := ledger.New(st, clock.NewSystem(), cfg.Auth.OwnerID)
	server := api.New(cfg, svc, tokens, completions)

	return server.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.Addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// runBootstrap performs first-time setup:
// 1. Creates a config file with a random JWT secret and owner id (if not exists)
// 2. Creates the database and registers the owner as an admin user
// 3. Generates a token for the owner
//
// One-command setup: grove-ledger bootstrap --name "Your Name"
func runBootstrap(ctx context.Context) error {
	// Supports both "--name value" and "--name=value" formats
	var displayName string
	args := os.Args[2:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--name" || arg == "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			displayName = args[i+1]
			i++
		case strings.HasPrefix(arg, "--name="):
			displayName = strings.TrimPrefix(arg, "--name=")
		case strings.HasPrefix(arg, "-n="):
			displayName = strings.TrimPrefix(arg, "-n=")
		case strings.HasPrefix(arg, "-"):
			return fmt.Errorf("unknown flag: %s", arg)
		default:
			return fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	if displayName == "" {
		displayName = "Platform Owner"
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("display name cannot be empty or whitespace only")
	}
	if len(displayName) > 100 {
		return fmt.Errorf("display name exceeds maximum length of 100 characters")
	}

	configPath := getConfigPath()
	dataPath := getDataPath()
	dbPath := filepath.Join(dataPath, "ledger.db")

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	// Check if config exists, create if not
	var cfg *config.Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Generate random JWT secret and a fresh owner identity
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)
		ownerID := uuid.New().String()

		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		configContent := fmt.Sprintf(`# grove-ledger configuration
# Generated by grove-ledger bootstrap

server:
  addr: "localhost:8080"
  read_header_timeout: "10s"
  shutdown_timeout: "5s"

database:
  path: "%s"

auth:
  jwt_secret: "%s"
  owner_id: "%s"
  token_ttl: "720h"

cache:
  enabled: false

logging:
  level: "info"
  format: "text"
`, dbPath, jwtSecret, ownerID)

		if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		green.Printf("  ✓ Created config: %s\n", configPath)

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	// Open the store and the ledger service
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	green.Printf("  ✓ Database: %s\n", cfg.Database.Path)

	svc := ledger.New(st, clock.NewSystem(), cfg.Auth.OwnerID)

	// Idempotence: a registered owner means bootstrap already ran
	if _, err := svc.GetUser(ctx, cfg.Auth.OwnerID); err == nil {
		return fmt.Errorf("bootstrap already complete: owner %s is registered", cfg.Auth.OwnerID)
	}

	if _, err := svc.Register(ctx, cfg.Auth.OwnerID, displayName, store.RoleAdmin); err != nil {
		return fmt.Errorf("registering owner: %w", err)
	}

	green.Printf("  ✓ Registered owner: %s\n", displayName)

	// Generate a token for the owner
	tokens, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating token verifier: %w", err)
	}

	tokenTTL := cfg.Auth.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 30 * 24 * time.Hour
	}
	expiresAt := time.Now().Add(tokenTTL).UTC()

	token, err := tokens.Generate(cfg.Auth.OwnerID, tokenTTL)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	// Save token to file for CLI tools to read
	tokenPath := filepath.Join(filepath.Dir(configPath), "token")
	if err := os.WriteFile(tokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	green.Printf("  ✓ Saved token: %s\n", tokenPath)

	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Owner")
	cyan.Println("  -----")
	fmt.Printf("  ID:    %s\n", cfg.Auth.OwnerID)
	fmt.Printf("  Name:  %s\n", displayName)
	fmt.Printf("  Role:  admin\n")
	fmt.Printf("  Token: %s (expires %s)\n", tokenPath, expiresAt.Format("Jan 02, 2006"))
	fmt.Println()
	fmt.Println("  Token (keep this secret!):")
	fmt.Printf("  %s\n", token)
	fmt.Println()

	yellow.Println("  Ready to go:")
	fmt.Println("    grove-ledger serve     # start the server")
	fmt.Println("    grove-admin me         # verify your identity")
	fmt.Println()

	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("grove-ledger configuration setup")
	fmt.Println("================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "ledger.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	addr := prompt(reader, "HTTP address", "localhost:8080")

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Auth
	fmt.Println("\n--- Auth Configuration ---")
	ownerID := prompt(reader, "Owner id (empty to generate)", "")
	if ownerID == "" {
		ownerID = uuid.New().String()
		fmt.Printf("Generated owner id: %s\n", ownerID)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}
	jwtSecret := base64.StdEncoding.EncodeToString(secretBytes)

	// Cache
	fmt.Println("\n--- Cache Configuration ---")
	enableCache := prompt(reader, "Enable Redis completion cache?", "no")
	cacheEnabled := strings.ToLower(enableCache) == "yes" || strings.ToLower(enableCache) == "y"

	var cacheAddr string
	if cacheEnabled {
		cacheAddr = prompt(reader, "Redis address", "localhost:6379")
	}

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# grove-ledger configuration\n")
	cfg.WriteString("# Generated by grove-ledger init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  addr: \"%s\"\n", addr))
	cfg.WriteString("  read_header_timeout: \"10s\"\n")
	cfg.WriteString("  shutdown_timeout: \"5s\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: \"%s\"\n", jwtSecret))
	cfg.WriteString(fmt.Sprintf("  owner_id: \"%s\"\n", ownerID))
	cfg.WriteString("  token_ttl: \"720h\"\n")
	cfg.WriteString("\n")

	cfg.WriteString("cache:\n")
	cfg.WriteString(fmt.Sprintf("  enabled: %t\n", cacheEnabled))
	if cacheEnabled {
		cfg.WriteString(fmt.Sprintf("  addr: \"%s\"\n", cacheAddr))
		cfg.WriteString("  ttl: \"5m\"\n")
	}
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  grove-ledger serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
