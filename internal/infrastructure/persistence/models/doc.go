// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by entity tables
// - catalog.go: normalized products and their variants
// - inventory.go: supplier inventory mappings, sync run logs and the change log
package models
