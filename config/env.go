package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppPort     = "8080"
	defaultAppEnv      = "local"
	defaultDataDir     = "data"
	defaultPublicDir   = "public"
	defaultAdminLogin  = "Bobur2012.12"
	defaultAdminPass   = "4348888b"
	defaultSessionTTL  = "2h"
	defaultBcryptCost  = "10"
	defaultMaxBodySize = "1048576"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once, merging over built-in defaults.
// Missing files are not an error.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":       defaultAppPort,
		"APP_ENV":        defaultAppEnv,
		"DATA_DIR":       defaultDataDir,
		"PUBLIC_DIR":     defaultPublicDir,
		"ADMIN_LOGIN":    defaultAdminLogin,
		"ADMIN_PASSWORD": defaultAdminPass,
		"SESSION_TTL":    defaultSessionTTL,
		"REDIS_ADDR":     "",
		"REDIS_PASSWORD": "",
		"BACKUP_DISK":    "",
		"BCRYPT_COST":    defaultBcryptCost,
		"MAX_BODY_BYTES": defaultMaxBodySize,
	}
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// DataDir is the directory holding the JSON resource files
// (users.json, orders.json, messages.json).
func DataDir() string {
	_ = Load()
	return get("DATA_DIR", defaultDataDir)
}

// PublicDir holds the static landing and admin panel pages.
func PublicDir() string {
	_ = Load()
	return get("PUBLIC_DIR", defaultPublicDir)
}

// AdminLogin is the reserved username of the single admin account.
// It cannot be claimed through registration.
func AdminLogin() string {
	_ = Load()
	return get("ADMIN_LOGIN", defaultAdminLogin)
}

// AdminPassword is the seed password for the admin account. Override it in
// production via the ADMIN_PASSWORD env var before first boot.
func AdminPassword() string {
	_ = Load()
	return get("ADMIN_PASSWORD", defaultAdminPass)
}

// SessionTTL is how long an idle session stays valid.
func SessionTTL() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("SESSION_TTL", defaultSessionTTL))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultSessionTTL)
	}
	return d
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", "")
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// BcryptCost returns the configured bcrypt work factor, clamped to a sane range.
func BcryptCost() int {
	_ = Load()
	n, err := strconv.Atoi(get("BCRYPT_COST", defaultBcryptCost))
	if err != nil || n < 4 || n > 31 {
		return 10
	}
	return n
}

// ── Backup storage ───────────────────────────────────────────────────────────

// BackupDisk names the storage disk resource files are mirrored to after
// every save ("local" or "s3"). Empty disables mirroring.
func BackupDisk() string {
	_ = Load()
	return get("BACKUP_DISK", "")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }

// ── Logging ──────────────────────────────────────────────────────────────────

// LogMongoURI enables the asynchronous MongoDB log sink when non-empty.
func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

func LogMongoDatabase() string {
	_ = Load()
	return get("LOG_MONGO_DB", "orderdesk")
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
