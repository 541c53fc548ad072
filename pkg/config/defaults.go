// Package config provides centralized default values for the gallery service
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Object Store Configuration
	StorageURL        string
	StorageServiceKey string
	StorageBucket     string
	StorePageSize     int
	TempPrefix        string
	GoodsFolder       string
	GoodsSubfolders   []string

	// Walk Configuration
	FolderConcurrency int
	WalkSoftDeadline  time.Duration

	// Request Orchestration
	RequestTimeout time.Duration

	// Cache TTL Configuration
	CountCacheTTL   time.Duration
	ListingCacheTTL time.Duration

	// Pagination
	DefaultPageSize int

	// Database
	LibsqlURL                string
	LibsqlAuthToken          string
	SQLitePath               string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Usage Matching
	HTMLTemplatesDir string

	// Ops Broadcasting
	OpsBroadcastInterval time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 90*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Object Store Configuration
	StorageURL = getEnvString("STORAGE_URL", "")
	StorageServiceKey = getEnvString("STORAGE_SERVICE_KEY", "")
	StorageBucket = getEnvString("STORAGE_BUCKET", "blog-images")
	StorePageSize = getEnvInt("STORE_PAGE_SIZE", 1000)
	TempPrefix = getEnvString("STORE_TEMP_PREFIX", "temp")
	GoodsFolder = getEnvString("STORE_GOODS_FOLDER", "originals/goods")
	GoodsSubfolders = strings.Split(getEnvString("STORE_GOODS_SUBFOLDERS",
		"drivers,woods,irons,wedges,putters,accessories"), ",")

	// Walk Configuration
	FolderConcurrency = getEnvInt("WALK_FOLDER_CONCURRENCY", 10)
	WalkSoftDeadline = getEnvDuration("WALK_SOFT_DEADLINE", 45*time.Second)

	// Request Orchestration
	RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 60*time.Second)

	// Cache TTL Configuration
	CountCacheTTL = time.Duration(getEnvInt("COUNT_CACHE_TTL_MINUTES", 15)) * time.Minute
	ListingCacheTTL = time.Duration(getEnvInt("LISTING_CACHE_TTL_MINUTES", 10)) * time.Minute

	// Pagination
	DefaultPageSize = getEnvInt("DEFAULT_PAGE_SIZE", 12)

	// Database
	LibsqlURL = getEnvString("LIBSQL_URL", "")
	LibsqlAuthToken = getEnvString("LIBSQL_AUTH_TOKEN", "")
	SQLitePath = getEnvString("SQLITE_PATH", "gallery.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Usage Matching
	HTMLTemplatesDir = getEnvString("HTML_TEMPLATES_DIR", "web/funnel-versions")

	// Ops Broadcasting
	OpsBroadcastInterval = getEnvDuration("OPS_BROADCAST_INTERVAL", 5*time.Second)
}
