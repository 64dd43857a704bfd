package handlers

// ErrorResponse is the standard API error body. Detail carries a stable,
// human-readable error kind; it never echoes uploaded content or filenames.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
