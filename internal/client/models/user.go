// Package models defines the client-side views of server API objects.
package models

// User is the directory entry as the API returns it. The server never
// sends password material.
type User struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}
