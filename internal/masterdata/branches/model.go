package branches

import "errors"

// Branch represents a store location.
type Branch struct {
	ID        string  `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Location  string  `json:"location" validate:"required"`
	Street    string  `json:"street" validate:"required"`
	City      string  `json:"city" validate:"required"`
	State     string  `json:"state" validate:"required"`
	ZipCode   string  `json:"zipCode" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

var (
	// ErrBranchNotFound indicates an unknown branch id.
	ErrBranchNotFound = errors.New("branches: branch not found")
	// ErrInvalidBranch indicates a branch failing validation.
	ErrInvalidBranch = errors.New("branches: invalid branch")
)

// DefaultBranches returns the branches used when nothing has been stored yet.
func DefaultBranches() []Branch {
	return []Branch{
		{
			ID:        "B001",
			Name:      "Cabang Pusat (Jakarta)",
			Location:  "Jakarta Pusat",
			Street:    "Jl. Sudirman No. 45",
			City:      "Jakarta",
			State:     "DKI Jakarta",
			ZipCode:   "10220",
			Latitude:  -6.2088,
			Longitude: 106.8456,
		},
		{
			ID:        "B002",
			Name:      "Cabang Bandung",
			Location:  "Bandung Kota",
			Street:    "Jl. Braga No. 10",
			City:      "Bandung",
			State:     "Jawa Barat",
			ZipCode:   "40111",
			Latitude:  -6.9175,
			Longitude: 107.6191,
		},
	}
}
