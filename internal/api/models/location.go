package models

// UpdateLocationRequest sets the tracked location for the calling device.
type UpdateLocationRequest struct {
	Lat         float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon         float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	DisplayName string  `json:"displayName,omitempty"`
}

// LocationResponse describes the tracked location for a device.
type LocationResponse struct {
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	DisplayName string    `json:"displayName,omitempty"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}
