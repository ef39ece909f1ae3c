package entities

import "time"

// Dimensions holds the physical size of a book in centimetres.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CatalogBook is the canonical catalog entry every import source converges to.
// Base text fields are required; their localized variants are optional.
type CatalogBook struct {
	ID   string  `gorm:"primaryKey;size:64" json:"id"`
	SKU  *string `gorm:"index;size:128" json:"sku"`
	ISBN *string `gorm:"index;size:20" json:"isbn"`

	Title                string `gorm:"index;size:512" json:"title"`
	TitleLocalized       string `gorm:"size:512" json:"titleLocalized,omitempty"`
	Author               string `gorm:"index;size:256" json:"author"`
	AuthorLocalized      string `gorm:"size:256" json:"authorLocalized,omitempty"`
	Publisher            string `gorm:"size:256" json:"publisher"`
	PublisherLocalized   string `gorm:"size:256" json:"publisherLocalized,omitempty"`
	Description          string `gorm:"type:text" json:"description"`
	DescriptionLocalized string `gorm:"type:text" json:"descriptionLocalized,omitempty"`
	Language             string `gorm:"size:64" json:"language,omitempty"`

	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice"`
	StockQuantity int     `json:"stockQuantity"`
	InStock       bool    `json:"inStock"`

	Category string   `gorm:"index;size:128" json:"category"`
	Tags     []string `gorm:"serializer:json" json:"tags"`
	Featured bool     `gorm:"index" json:"featured"`

	Pages      int        `json:"pages"`
	Weight     float64    `json:"weight"`
	Dimensions Dimensions `gorm:"embedded;embeddedPrefix:dimension_" json:"dimensions"`

	CoverImage string   `gorm:"size:2048" json:"coverImage"`
	Images     []string `gorm:"serializer:json" json:"images"`

	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviewsCount"`

	PublishedDate string `gorm:"size:10" json:"publishedDate"`
	AddedDate     string `gorm:"size:40" json:"addedDate"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (CatalogBook) TableName() string {
	return "catalog_books"
}

// Discount returns the amount saved against the original price.
func (b CatalogBook) Discount() float64 {
	if b.OriginalPrice <= b.Price {
		return 0
	}
	return b.OriginalPrice - b.Price
}
