package domain

// Style is an entry in the tattoo style catalog. Only active styles can be
// chosen for new designs.
type Style struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}
