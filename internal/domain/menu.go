package domain

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID            uuid.UUID
	NameEN        string
	NameZH        string
	DescriptionEN string
	DescriptionZH string
	SortOrder     int32
	IsActive      bool

	CreatedAt time.Time
}

type MenuItem struct {
	ID            uuid.UUID
	CategoryID    uuid.UUID
	NameEN        string
	NameZH        string
	DescriptionEN string
	DescriptionZH string
	Price         Money
	ImageURL      string
	IsAvailable   bool
	IsFeatured    bool
	PrepMinutes   int32
	Calories      int32
	IngredientsEN []string
	IngredientsZH []string
	Allergens     []string
	SortOrder     int32

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MenuFilter narrows ListItems. Zero value matches everything.
type MenuFilter struct {
	CategoryID    uuid.UUID
	AvailableOnly bool
	FeaturedOnly  bool
}
