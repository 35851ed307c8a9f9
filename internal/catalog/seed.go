package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/units"
)

// StarterProducts returns the catalog used when nothing has been stored yet.
func StarterProducts() []Product {
	return []Product{
		{
			ID:        "P001",
			Name:      "Kopi Kapal Api Mix",
			SKU:       "8991001",
			Category:  "Beverage",
			BranchID:  "B001",
			BaseUnit:  "Sachet",
			BasePrice: decimal.NewFromInt(1500),
			Stock:     decimal.NewFromInt(500),
			Conversions: []units.Conversion{
				{Name: "Renceng", Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(14500)},
				{Name: "Karton", Quantity: decimal.NewFromInt(120), Price: decimal.NewFromInt(170000)},
			},
			Image: "https://picsum.photos/200",
		},
		{
			ID:        "P002",
			Name:      "Indomie Goreng",
			SKU:       "8992002",
			Category:  "Food",
			BranchID:  "B001",
			BaseUnit:  "Bungkus",
			BasePrice: decimal.NewFromInt(3500),
			Stock:     decimal.NewFromInt(200),
			Conversions: []units.Conversion{
				{Name: "Karton", Quantity: decimal.NewFromInt(40), Price: decimal.NewFromInt(135000)},
			},
			Image: "https://picsum.photos/201",
		},
	}
}
