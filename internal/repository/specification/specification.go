package specification

import "gorm.io/gorm"

// Specification is a composable gorm query filter.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
