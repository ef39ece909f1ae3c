package config

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./catalog.db"

	DefaultPlaceholderImage = "https://placehold.co/300x450?text=No+Cover"

	// DefaultLocaleMarkers is the comma-separated default for IMPORT_LOCALE_MARKERS
	DefaultLocaleMarkers = "telugu,localized,_te,(te)"

	DefaultWooCommerceResourcePath = "/wp-json/wc/v3/products"
)
