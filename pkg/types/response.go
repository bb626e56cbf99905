package types

// Envelope is the wire shape every admin API response uses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Stats   any    `json:"stats,omitempty"`
}
