package types

import (
	"time"
)

type Category string

const (
	CategoryFood       Category = "Food"
	CategoryClothing   Category = "Clothing"
	CategoryToiletries Category = "Toiletries"
	CategoryMedical    Category = "Medical"
	CategoryEducation  Category = "Education"
	CategoryOther      Category = "Other"
)

var categories = map[Category]struct{}{
	CategoryFood:       {},
	CategoryClothing:   {},
	CategoryToiletries: {},
	CategoryMedical:    {},
	CategoryEducation:  {},
	CategoryOther:      {},
}

func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := categories[c]
	return c, ok
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(s); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, true
	default:
		return "", false
	}
}

// Rank orders priorities for the "by priority" views. Higher sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type Need struct {
	ID              string     `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Description     string     `db:"description" json:"description"`
	Cost            float64    `db:"cost" json:"cost"`
	Quantity        int        `db:"quantity" json:"quantity"`
	Category        Category   `db:"category" json:"category"`
	Priority        Priority   `db:"priority" json:"priority"`
	IsTimeSensitive bool       `db:"is_time_sensitive" json:"is_time_sensitive"`
	Deadline        *time.Time `db:"deadline" json:"deadline"`
	FrequencyCount  int        `db:"frequency_count" json:"frequency_count"`
	Address         string     `db:"address" json:"address"`
	Latitude        *float64   `db:"latitude" json:"latitude"`
	Longitude       *float64   `db:"longitude" json:"longitude"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
