// Package models contains GORM persistence models for the marketplace tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// entity with ToDomain and FromDomain.
package models
