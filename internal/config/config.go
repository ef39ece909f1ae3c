package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Audit
		Import
		WooCommerce
		WooCommerceSync
		Tasks
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Audit struct {
		Dir string // Raw upload archive; empty disables archiving
	}
	Import struct {
		PlaceholderImage string
		StrictMode       bool
		LocaleMarkers    []string // Substrings marking a remote attribute as localized
	}
	WooCommerce struct {
		URL            string
		ConsumerKey    string
		ConsumerSecret string
		ResourcePath   string
		Timeout        time.Duration
	}
	WooCommerceSync struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

// HasWooCommerceCredentials reports whether a default store is configured.
func (c *Config) HasWooCommerceCredentials() bool {
	return c.WooCommerce.URL != "" && c.WooCommerce.ConsumerKey != "" && c.WooCommerce.ConsumerSecret != ""
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")

	// Import pipeline defaults
	v.SetDefault("import_placeholder_image", DefaultPlaceholderImage)
	v.SetDefault("import_strict_mode", false)
	v.SetDefault("import_locale_markers", DefaultLocaleMarkers)

	// WooCommerce defaults
	v.SetDefault("woocommerce_url", "")
	v.SetDefault("woocommerce_consumer_key", "")
	v.SetDefault("woocommerce_consumer_secret", "")
	v.SetDefault("woocommerce_resource_path", DefaultWooCommerceResourcePath)
	v.SetDefault("woocommerce_timeout", "30s")
	v.SetDefault("woocommerce_sync_enabled", false)
	v.SetDefault("woocommerce_sync_schedule", "0 */6 * * *") // Every 6 hours

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Import: Import{
			PlaceholderImage: v.GetString("IMPORT_PLACEHOLDER_IMAGE"),
			StrictMode:       v.GetBool("IMPORT_STRICT_MODE"),
			LocaleMarkers:    splitList(v.GetString("IMPORT_LOCALE_MARKERS")),
		},
		WooCommerce: WooCommerce{
			URL:            v.GetString("WOOCOMMERCE_URL"),
			ConsumerKey:    v.GetString("WOOCOMMERCE_CONSUMER_KEY"),
			ConsumerSecret: v.GetString("WOOCOMMERCE_CONSUMER_SECRET"),
			ResourcePath:   v.GetString("WOOCOMMERCE_RESOURCE_PATH"),
			Timeout:        v.GetDuration("WOOCOMMERCE_TIMEOUT"),
		},
		WooCommerceSync: WooCommerceSync{
			Enabled:  v.GetBool("WOOCOMMERCE_SYNC_ENABLED"),
			Schedule: v.GetString("WOOCOMMERCE_SYNC_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
