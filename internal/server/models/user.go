// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that can authenticate and own invoices.
//
// The audit fields come in three pairs. CreatedBy/CreatedAt identify the
// admin who created the record (nil for the bootstrap user). UpdatedBy and
// UpdatedAt describe the most recent mutation. LastUpdatedBy/LastUpdatedAt
// hold the mutation before that one, giving a one-deep history: on every
// update the previous UpdatedBy/UpdatedAt values are shifted into
// LastUpdatedBy/LastUpdatedAt before being overwritten.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	IsAdmin        bool

	CreatedBy *int64
	CreatedAt *time.Time

	UpdatedBy *int64
	UpdatedAt *time.Time

	LastUpdatedBy *int64
	LastUpdatedAt *time.Time
}
