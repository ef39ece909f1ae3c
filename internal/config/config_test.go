package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 2, cfg.Global.ShutdownTimeoutInSeconds)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultPlaceholderImage, cfg.Import.PlaceholderImage)
	assert.False(t, cfg.Import.StrictMode)
	assert.Equal(t, []string{"telugu", "localized", "_te", "(te)"}, cfg.Import.LocaleMarkers)
	assert.Equal(t, DefaultWooCommerceResourcePath, cfg.WooCommerce.ResourcePath)
	assert.Equal(t, 30*time.Second, cfg.WooCommerce.Timeout)
	assert.False(t, cfg.WooCommerceSync.Enabled)
	assert.Equal(t, "0 */6 * * *", cfg.WooCommerceSync.Schedule)
	assert.True(t, cfg.Tasks.Enabled)
	assert.Equal(t, 2, cfg.Tasks.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Tasks.ReleaseAfter)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.HasWooCommerceCredentials())
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("IMPORT_STRICT_MODE", "true")
	t.Setenv("IMPORT_LOCALE_MARKERS", " Hindi, ,_hi ")
	t.Setenv("WOOCOMMERCE_URL", "https://shop.example")
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "ck")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "cs")
	t.Setenv("WOOCOMMERCE_TIMEOUT", "5s")

	cfg := NewConfig()

	assert.Equal(t, int32(9000), cfg.HTTP.Port)
	assert.True(t, cfg.Import.StrictMode)
	assert.Equal(t, []string{"hindi", "_hi"}, cfg.Import.LocaleMarkers)
	assert.Equal(t, 5*time.Second, cfg.WooCommerce.Timeout)
	assert.True(t, cfg.HasWooCommerceCredentials())
}
