// Package config resolves process configuration from the environment once
// at startup. Components take what they need from Config through their
// constructors; the storage source is the one exception and selects its
// backend from STORAGE_TYPE directly.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultQdrantURL         = "http://localhost:6334"
	DefaultQdrantPort        = 6334
	DefaultCasesCollection   = "bd_legal_cases"
	DefaultLawsCollection    = "bd_law_reference"
	DefaultCustomModelAPIKey = "custom-api-key"
	DefaultPromptsPath       = "prompts"
	DefaultPort              = "8080"
)

// Config carries everything the binaries need.
type Config struct {
	GoogleAPIKey string
	OpenAIAPIKey string

	QdrantHost   string
	QdrantPort   int
	QdrantUseTLS bool
	QdrantAPIKey string

	CasesCollection string
	LawsCollection  string

	CustomModelURL    string
	CustomModelAPIKey string

	PromptsPath string
	Port        string

	// StrictPointIDs makes multi-file law ingestion fail when the
	// collection's point count cannot be read, instead of estimating
	// potentially colliding IDs.
	StrictPointIDs bool
}

// Load reads .env (falling back to ../../.env for cmd/ binaries) and
// resolves the configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := &Config{
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		QdrantAPIKey:      os.Getenv("QDRANT_API_KEY"),
		CasesCollection:   envOr("QDRANT_LEGAL_CASES_COLLECTION_NAME", DefaultCasesCollection),
		LawsCollection:    envOr("QDRANT_LAW_REFERENCE_COLLECTION_NAME", DefaultLawsCollection),
		CustomModelURL:    os.Getenv("CUSTOM_MODEL_URL"),
		CustomModelAPIKey: envOr("CUSTOM_MODEL_API_KEY", DefaultCustomModelAPIKey),
		PromptsPath:       envOr("PROMPTS_PATH", DefaultPromptsPath),
		Port:              envOr("PORT", DefaultPort),
		StrictPointIDs:    boolEnv("STRICT_POINT_IDS"),
	}

	host, port, useTLS, err := ParseQdrantURL(envOr("QDRANT_URL", DefaultQdrantURL))
	if err != nil {
		return nil, err
	}
	cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantUseTLS = host, port, useTLS

	return cfg, nil
}

// ParseQdrantURL splits a QDRANT_URL value into the host, port, and TLS
// flag the gRPC client needs. Scheme-less values are treated as http; a
// missing port means the client default 6334.
func ParseQdrantURL(raw string) (host string, port int, useTLS bool, err error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid QDRANT_URL %q: %w", raw, err)
	}

	host = u.Hostname()
	if host == "" {
		return "", 0, false, fmt.Errorf("invalid QDRANT_URL %q: missing host", raw)
	}

	port = DefaultQdrantPort
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid QDRANT_URL %q: %w", raw, err)
		}
	}

	return host, port, u.Scheme == "https", nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
