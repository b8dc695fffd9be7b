package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	usermodel "store-directory/internal/user/model"
)

// LocationPointType is the only discriminator value ever persisted for a
// store location.
const LocationPointType = "Point"

type Location struct {
	Type    string  `json:"type" gorm:"column:location_type;type:varchar(20);not null;default:'Point'"`
	Lng     float64 `json:"lng" gorm:"column:location_lng"`
	Lat     float64 `json:"lat" gorm:"column:location_lat"`
	Address string  `json:"address" gorm:"column:location_address;type:text"`
}

type Store struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string         `json:"description" gorm:"type:text"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`
	Location    Location       `json:"location" gorm:"embedded"`
	Photo       *string        `json:"photo,omitempty" gorm:"type:varchar(255)"`

	AuthorID uuid.UUID       `json:"author_id" gorm:"type:uuid;not null;index"`
	Author   *usermodel.User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Store) TableName() string {
	return "stores"
}

// SearchResult is one row of the text-search API response, a store
// flattened alongside its relevance score.
type SearchResult struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Score       float64   `json:"score"`
}

// TagCount is one row of the distinct tag aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
