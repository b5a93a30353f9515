// Package models contains GORM persistence models that map to database tables.
// They are separate from domain types so the analytics domain stays free of
// ORM tags.
//
// Structure:
//   - catalog.go: sales events, menus, recipes, ingredients and recipe components
//   - snapshot.go: persisted menu engineering snapshots
//
// The schema itself is owned by the SQL migrations; the GORM tags only need
// to be precise enough for AutoMigrate in tests.
package models
