package model

import "time"

// Field is a user-owned sports-field record.  Latitude and longitude store
// a representative point (typically the boundary centroid), Size is the
// estimated area in square meters and SurfaceType is a free-form label
// such as "grass" or "artificial turf".  Every field belongs to exactly
// one user and is removed when that user is deleted.
type Field struct {
    ID          int64     `json:"id"`           // fields.id
    UserID      int64     `json:"user_id"`      // fields.user_id
    Name        string    `json:"name"`         // fields.name
    Location    string    `json:"location"`     // fields.location (free-text address)
    Latitude    float64   `json:"latitude"`     // fields.latitude
    Longitude   float64   `json:"longitude"`    // fields.longitude
    Size        float64   `json:"size"`         // fields.size (square meters)
    SurfaceType string    `json:"surface_type"` // fields.surface_type
    CreatedAt   time.Time `json:"created_at"`   // fields.created_at
}
