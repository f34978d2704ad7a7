package models

// Service is a catalog entry the workshop offers. The catalog is seeded
// from configuration and toggled active/inactive, never deleted.
type Service struct {
	ID            int64   `yaml:"id" json:"id"`
	Name          string  `yaml:"name" json:"name"`
	Description   string  `yaml:"description" json:"description"`
	Price         float64 `yaml:"price" json:"price"`
	DurationHours float64 `yaml:"duration_hours" json:"duration_hours"`
	IsActive      bool    `yaml:"is_active" json:"is_active"`
}
