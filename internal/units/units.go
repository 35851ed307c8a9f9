// Package units resolves derived selling units into base-unit quantities.
//
// A product counts stock in its base unit. Every other unit is a Conversion
// holding the fully resolved number of base units it contains and its own
// fixed selling price. Conversions may be defined relative to the base unit or
// to another conversion; the relation is resolved once, at definition time.
package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

var (
	// ErrReferenceNotFound indicates the reference unit is neither the base unit nor a known conversion.
	ErrReferenceNotFound = errors.New("units: reference unit not found")
	// ErrDuplicateUnitName indicates a unit name already used by the base unit or another conversion.
	ErrDuplicateUnitName = errors.New("units: duplicate unit name")
	// ErrUnitNotFound indicates a selected unit is not defined for the product.
	ErrUnitNotFound = errors.New("units: unit not found")
	// ErrUnitNameRequired indicates an empty unit name.
	ErrUnitNameRequired = errors.New("units: unit name required")
	// ErrInvalidMultiplier indicates a multiplier that is not positive.
	ErrInvalidMultiplier = errors.New("units: multiplier must be > 0")
	// ErrInvalidQuantity indicates a stored conversion quantity that is not positive.
	ErrInvalidQuantity = errors.New("units: conversion quantity must be > 0")
	// ErrInvalidPrice indicates a negative price.
	ErrInvalidPrice = errors.New("units: price must be >= 0")
	// ErrConversionIndex indicates an index outside the conversion list.
	ErrConversionIndex = errors.New("units: conversion index out of range")
)

// Conversion is a derived unit with its quantity expressed in base units.
type Conversion struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Definition is the user input for a new or edited conversion.
type Definition struct {
	Name       string          `json:"name"`
	Reference  string          `json:"reference"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Price      decimal.Decimal `json:"price"`
}

// Resolve turns def into a Conversion to be appended to existing.
func Resolve(baseUnit string, existing []Conversion, def Definition) (Conversion, error) {
	return resolve(baseUnit, existing, -1, def)
}

// ResolveAt turns def into a Conversion replacing existing[index]. The
// conversion at index does not count as a name collision with itself.
func ResolveAt(baseUnit string, existing []Conversion, index int, def Definition) (Conversion, error) {
	if index < 0 || index >= len(existing) {
		return Conversion{}, fmt.Errorf("%w: %d", ErrConversionIndex, index)
	}
	return resolve(baseUnit, existing, index, def)
}

func resolve(baseUnit string, existing []Conversion, skip int, def Definition) (Conversion, error) {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return Conversion{}, ErrUnitNameRequired
	}
	if !def.Multiplier.IsPositive() {
		return Conversion{}, ErrInvalidMultiplier
	}
	if def.Price.IsNegative() {
		return Conversion{}, ErrInvalidPrice
	}
	if sameName(name, baseUnit) {
		return Conversion{}, fmt.Errorf("%w: %q matches base unit", ErrDuplicateUnitName, name)
	}
	for i, conv := range existing {
		if i == skip {
			continue
		}
		if sameName(name, conv.Name) {
			return Conversion{}, fmt.Errorf("%w: %q", ErrDuplicateUnitName, name)
		}
	}

	quantity := def.Multiplier
	if def.Reference != baseUnit {
		ref, ok := Find(existing, def.Reference)
		if !ok {
			return Conversion{}, fmt.Errorf("%w: %q", ErrReferenceNotFound, def.Reference)
		}
		quantity = def.Multiplier.Mul(ref.Quantity)
	}
	return Conversion{Name: name, Quantity: quantity, Price: def.Price}, nil
}

// Validate checks a whole conversion list against baseUnit.
func Validate(baseUnit string, list []Conversion) error {
	seen := make(map[string]struct{}, len(list)+1)
	seen[fold(baseUnit)] = struct{}{}
	for _, conv := range list {
		if strings.TrimSpace(conv.Name) == "" {
			return ErrUnitNameRequired
		}
		if !conv.Quantity.IsPositive() {
			return fmt.Errorf("%w: %q", ErrInvalidQuantity, conv.Name)
		}
		if conv.Price.IsNegative() {
			return fmt.Errorf("%w: %q", ErrInvalidPrice, conv.Name)
		}
		key := fold(conv.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateUnitName, conv.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Find looks up a conversion by exact name.
func Find(list []Conversion, name string) (Conversion, bool) {
	for _, conv := range list {
		if conv.Name == name {
			return conv, true
		}
	}
	return Conversion{}, false
}

// PriceOf returns the selling price of one unit.
func PriceOf(baseUnit string, basePrice decimal.Decimal, list []Conversion, unit string) (decimal.Decimal, error) {
	if unit == baseUnit {
		return basePrice, nil
	}
	conv, ok := Find(list, unit)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnitNotFound, unit)
	}
	return conv.Price, nil
}

// ToBase converts qty of unit into base units.
func ToBase(baseUnit string, list []Conversion, unit string, qty decimal.Decimal) (decimal.Decimal, error) {
	if unit == baseUnit {
		return qty, nil
	}
	conv, ok := Find(list, unit)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnitNotFound, unit)
	}
	return qty.Mul(conv.Quantity), nil
}

// Names lists the selectable units, base unit first, then conversions in order.
func Names(baseUnit string, list []Conversion) []string {
	names := make([]string, 0, len(list)+1)
	names = append(names, baseUnit)
	for _, conv := range list {
		names = append(names, conv.Name)
	}
	return names
}

// Append returns a new list with conv added at the end.
func Append(list []Conversion, conv Conversion) []Conversion {
	out := make([]Conversion, 0, len(list)+1)
	out = append(out, list...)
	return append(out, conv)
}

// Replace returns a new list with the element at index swapped for conv.
func Replace(list []Conversion, index int, conv Conversion) ([]Conversion, error) {
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrConversionIndex, index)
	}
	out := Clone(list)
	out[index] = conv
	return out, nil
}

// Remove returns a new list without the element at index.
func Remove(list []Conversion, index int) ([]Conversion, error) {
	if index < 0 || index >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrConversionIndex, index)
	}
	out := make([]Conversion, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// Clone copies list. A nil list clones to an empty one.
func Clone(list []Conversion) []Conversion {
	out := make([]Conversion, len(list))
	copy(out, list)
	return out
}

func sameName(a, b string) bool {
	return fold(a) == fold(b)
}

// fold uses a fresh Caser per call; cases.Caser is not safe for concurrent use.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
