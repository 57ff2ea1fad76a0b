package models

// ApiResponse is the envelope for paginated list endpoints. Previous and Next are
// absolute URLs, or null when the page has no neighbour in that direction.
type ApiResponse struct {
	Items    interface{} `json:"items"`
	Count    int64       `json:"count"`
	Previous *string     `json:"previous"`
	Next     *string     `json:"next"`
}

// ListResponse is the partial envelope for unpaginated listings
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int64       `json:"count"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
