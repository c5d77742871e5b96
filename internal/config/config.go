// Package config provides application configuration loaded from environment
// variables, an optional .env file, and an optional YAML catalogue file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxFileSize   = 100 * 1024 * 1024
	DefaultMaxConcurrent = 4
)

// Catalog is the file-type and ignore-pattern catalogue. It can be
// replaced wholesale from the YAML file named by BC_MCP_CONFIG.
type Catalog struct {
	SupportedFormats []string `yaml:"supported_formats" json:"supported_formats"`
	IgnorePatterns   []string `yaml:"ignore_patterns" json:"ignore_patterns"`
	// DefaultExcludes apply to folder comparisons that name no excludes.
	DefaultExcludes []string `yaml:"default_excludes" json:"default_excludes"`
}

// DefaultCatalog returns the built-in catalogue.
func DefaultCatalog() Catalog {
	return Catalog{
		SupportedFormats: []string{
			".txt", ".log", ".ini", ".cfg", ".py", ".js", ".java", ".cpp", ".cs",
			".html", ".css", ".xml", ".json", ".yaml", ".csv", ".md", ".rst",
			".sql", ".sh", ".bat", ".ps1", ".go",
		},
		IgnorePatterns: []string{
			"*.tmp", "*.temp", "*.bak", "*.swp", ".DS_Store",
			"__pycache__", "node_modules", ".git", ".svn",
		},
	}
}

// IsSupported reports whether path has a catalogued extension.
func (c Catalog) IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range c.SupportedFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether the base name of path matches an ignore
// pattern.
func (c Catalog) ShouldIgnore(path string) bool {
	name := filepath.Base(path)
	for _, p := range c.IgnorePatterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Config holds all application configuration.
type Config struct {
	// Executable overrides the comparison executable search.
	Executable    string
	Timeout       time.Duration
	MaxFileSize   int64
	ReportDir     string
	MaxConcurrent int

	LogLevel    string
	LogFormat   string
	OTelEnabled bool

	// API server settings.
	APIPort      string
	CORSOrigins  []string
	OIDCIssuer   string
	OIDCAudience string
	// RateLimit is tool launches per second per operation kind; 0 disables.
	RateLimit float64
	// ClientBudget is requests per minute per client; 0 disables.
	ClientBudget int

	// Report publishing. Empty ReportBucket disables it.
	ReportBucket string
	ReportPrefix string
	AWSRegion    string
	AWSProfile   string

	// ReportRoleARN is assumed before uploading reports, when set.
	ReportRoleARN string

	Catalog Catalog
}

// LoadFromEnv reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first; variables
// already set in the environment win.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{
		Executable:    os.Getenv("BC_MCP_EXECUTABLE"),
		ReportDir:     os.Getenv("BC_MCP_REPORT_DIR"),
		LogLevel:      envOr("BC_MCP_LOG_LEVEL", "info"),
		LogFormat:     envOr("BC_MCP_LOG_FORMAT", "json"),
		APIPort:       envOr("BC_MCP_API_PORT", "8080"),
		CORSOrigins:   parseCORSOrigins(os.Getenv("BC_MCP_CORS_ORIGINS")),
		OIDCIssuer:    os.Getenv("BC_MCP_OIDC_ISSUER"),
		OIDCAudience:  os.Getenv("BC_MCP_OIDC_AUDIENCE"),
		ReportBucket:  os.Getenv("BC_MCP_REPORT_BUCKET"),
		ReportPrefix:  envOr("BC_MCP_REPORT_PREFIX", "reports/"),
		AWSRegion:     envOr("AWS_REGION", "us-east-1"),
		AWSProfile:    os.Getenv("AWS_PROFILE"),
		ReportRoleARN: os.Getenv("BC_MCP_REPORT_ROLE_ARN"),
		Catalog:       DefaultCatalog(),
	}

	secs, err := envInt("BC_MCP_TIMEOUT", int(DefaultTimeout/time.Second))
	if err != nil {
		return Config{}, err
	}
	if secs <= 0 {
		return Config{}, fmt.Errorf("config: BC_MCP_TIMEOUT must be positive, got %d", secs)
	}
	cfg.Timeout = time.Duration(secs) * time.Second

	maxSize, err := envInt("BC_MCP_MAX_FILE_SIZE", DefaultMaxFileSize)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxFileSize = int64(maxSize)

	if cfg.MaxConcurrent, err = envInt("BC_MCP_MAX_CONCURRENT", DefaultMaxConcurrent); err != nil {
		return Config{}, err
	}
	if cfg.ClientBudget, err = envInt("BC_MCP_CLIENT_BUDGET", 0); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = envFloat("BC_MCP_RATE_LIMIT", 0); err != nil {
		return Config{}, err
	}
	if cfg.OTelEnabled, err = envBool("BC_MCP_OTEL_ENABLED", false); err != nil {
		return Config{}, err
	}

	if cfg.ReportDir != "" {
		if fi, err := os.Stat(cfg.ReportDir); err != nil || !fi.IsDir() {
			return Config{}, fmt.Errorf("config: BC_MCP_REPORT_DIR %q is not a directory", cfg.ReportDir)
		}
	}
	if (cfg.OIDCIssuer == "") != (cfg.OIDCAudience == "") {
		return Config{}, fmt.Errorf("config: BC_MCP_OIDC_ISSUER and BC_MCP_OIDC_AUDIENCE must be set together")
	}

	if cfg.ReportRoleARN != "" && cfg.ReportBucket == "" {
		return Config{}, fmt.Errorf("config: BC_MCP_REPORT_ROLE_ARN requires BC_MCP_REPORT_BUCKET")
	}

	if path := os.Getenv("BC_MCP_CONFIG"); path != "" {
		cat, err := LoadCatalog(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Catalog = cat
	}

	return cfg, nil
}

// OIDCEnabled reports whether API authentication is configured.
func (c Config) OIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCAudience != ""
}

// LoadCatalog reads a YAML catalogue. Sections missing from the file keep
// their built-in defaults.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file Catalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Catalog{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cat := DefaultCatalog()
	if file.SupportedFormats != nil {
		cat.SupportedFormats = file.SupportedFormats
	}
	if file.IgnorePatterns != nil {
		cat.IgnorePatterns = file.IgnorePatterns
	}
	if file.DefaultExcludes != nil {
		cat.DefaultExcludes = file.DefaultExcludes
	}
	for _, p := range append(append([]string{}, cat.IgnorePatterns...), cat.DefaultExcludes...) {
		if !doublestar.ValidatePattern(p) {
			return Catalog{}, fmt.Errorf("config: %s: invalid pattern %q", path, p)
		}
	}
	return cat, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: invalid %s %q (must be a non-negative integer)", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("config: invalid %s %q (must be a non-negative number)", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q (must be true or false)", key, v)
	}
	return b, nil
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
