// Package integration resolves the backend's scrape-target configuration.
package integration

import "time"

// Integration is a configured scrape target. Exactly one exists per origin.
type Integration struct {
	ID                 int64     `json:"id" db:"id"`
	Origin             string    `json:"website_origin" db:"website_origin"`
	Name               *string   `json:"website_name" db:"website_name"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	AccessToken        *string   `json:"access_token" db:"access_token"`
	RefreshToken       *string   `json:"refresh_token" db:"refresh_token"`
	AuthorizationToken *string   `json:"authorization_token" db:"authorization_token"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the website name, falling back to the origin.
func (i Integration) DisplayName() string {
	if i.Name != nil && *i.Name != "" {
		return *i.Name
	}
	return i.Origin
}
