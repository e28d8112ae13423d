package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "strings"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults suitable for local development.
type Config struct {
    Env            string // application environment (dev, test, prod)
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    DBAutoMigrate  bool   // apply the embedded schema on startup
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time-to-live in minutes
    RefreshTTLDays int    // refresh token time-to-live in days
    BcryptCost     int    // bcrypt cost for password hashing
    LogLevel       string // zap level name (debug, info, warn, error)
    DocumentsDir   string // root directory for attached documents
    MaxUploadBytes int64  // upper bound for a single document upload
    RabbitURL      string // AMQP URL; empty disables event publishing
    ReportAuthor   string // generator name printed on exported reports
}

// Load reads configuration values from environment variables and returns a
// Config.  Missing required values cause the program to exit with a fatal
// log message.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),
        Port:           must("APP_PORT"),
        DBUser:         must("DB_USER"),
        DBPass:         os.Getenv("DB_PASS"),
        DBHost:         must("DB_HOST"),
        DBPort:         must("DB_PORT"),
        DBName:         must("DB_NAME"),
        DBAutoMigrate:  envBool("DB_AUTO_MIGRATE", false),
        JWTSecret:      must("JWT_SECRET"),
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
        BcryptCost:     mustInt("BCRYPT_COST"),
        LogLevel:       envStr("LOG_LEVEL", "info"),
        DocumentsDir:   envStr("DOCUMENTS_DIR", "data/documentos"),
        MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20),
        RabbitURL:      rabbitURL(),
        ReportAuthor:   envStr("REPORT_GENERATOR_NAME", "Sistema de Actividades"),
    }
}

// IsDev reports whether detailed error messages may be returned to clients.
func (c Config) IsDev() bool {
    return strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// rabbitURL honours both RABBITMQ_URL and the older AMQP_URL name.
func rabbitURL() string {
    if v := os.Getenv("RABBITMQ_URL"); v != "" {
        return v
    }
    return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
