package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"logospace/internal/analyzer"
)

type Config struct {
	Port            string
	Env             string
	Debug           bool
	MaxCorpusBytes  int
	MaxRequestBytes int64
	ReportCacheSize int
	Archive         ArchiveConfig
	GitHub          GitHubConfig
}

type ArchiveConfig struct {
	Dir          string
	MaxEntries   int
	Retention    time.Duration
	PostgresDSN  string
	S3           S3Config
	CacheEntries int
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// GitHubConfig holds the GitHub App credentials behind POST /webhook.
type GitHubConfig struct {
	AppID         int64
	PrivateKey    []byte
	WebhookSecret string
	// APIURL points the client at GitHub Enterprise; empty means github.com.
	APIURL string
}

// Enabled reports whether the webhook can verify deliveries and act on them.
func (c GitHubConfig) Enabled() bool {
	return c.AppID > 0 && len(c.PrivateKey) > 0 && c.WebhookSecret != ""
}

// CanUseS3 reports whether every field minio needs is present.
func (c S3Config) CanUseS3() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

const (
	defaultPort            = ":5000"
	defaultMaxCorpusBytes  = analyzer.DefaultMaxCorpusBytes
	defaultReportCacheSize = 256
)

// Load reads .env (if present), flags and the process environment. Flags are
// parsed from args so tests can pass their own.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", defaultPort, "server port")
	debug := fs.Bool("debug", false, "enable request logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := firstNonEmpty(os.Getenv("PORT"), os.Getenv("PYTHON_PORT")); envPort != "" {
		*port = normalizePort(envPort)
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	maxCorpus := envInt("MAX_CORPUS_BYTES", defaultMaxCorpusBytes)
	return &Config{
		Port:            *port,
		Env:             env,
		Debug:           *debug || envBool("DEBUG", false),
		MaxCorpusBytes:  maxCorpus,
		MaxRequestBytes: int64(envInt("MAX_REQUEST_BYTES", requestLimitFor(maxCorpus))),
		ReportCacheSize: envInt("REPORT_CACHE_SIZE", defaultReportCacheSize),
		Archive:         loadArchiveConfig(env),
		GitHub:          loadGitHubConfig(),
	}, nil
}

// requestLimitFor leaves room for JSON escaping and file names around the
// corpus itself.
func requestLimitFor(maxCorpus int) int {
	if maxCorpus <= 0 {
		return 64 << 20
	}
	return maxCorpus*2 + 1<<20
}

func loadArchiveConfig(env string) ArchiveConfig {
	dir := strings.TrimSpace(os.Getenv("ARCHIVE_DIR"))
	if dir == "" && strings.EqualFold(env, "local") {
		dir = "tmp/reports"
	}
	return ArchiveConfig{
		Dir:          dir,
		MaxEntries:   envInt("ARCHIVE_MAX_ENTRIES", 1024),
		Retention:    envDuration("ARCHIVE_RETENTION", 0),
		PostgresDSN:  strings.TrimSpace(os.Getenv("ARCHIVE_PG_DSN")),
		CacheEntries: envInt("ARCHIVE_CACHE_ENTRIES", 256),
		S3: S3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT")),
			Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
			AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
			SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
			Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "logospace-reports"),
			UseSSL:    envBool("ARCHIVE_S3_USE_SSL", true),
		},
	}
}

// loadGitHubConfig accepts the key inline (with literal \n escapes, as .env
// files usually carry it) or from GITHUB_PRIVATE_KEY_PATH.
func loadGitHubConfig() GitHubConfig {
	appID, _ := strconv.ParseInt(strings.TrimSpace(os.Getenv("GITHUB_APP_ID")), 10, 64)
	key := strings.ReplaceAll(strings.TrimSpace(os.Getenv("GITHUB_PRIVATE_KEY")), `\n`, "\n")
	var pem []byte
	if key != "" {
		pem = []byte(key)
	} else if path := strings.TrimSpace(os.Getenv("GITHUB_PRIVATE_KEY_PATH")); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			pem = b
		}
	}
	return GitHubConfig{
		AppID:         appID,
		PrivateKey:    pem,
		WebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		APIURL:        strings.TrimSpace(os.Getenv("GITHUB_API_URL")),
	}
}

func normalizePort(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, ":") {
		return v
	}
	return ":" + v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
