package catalog

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category groups variants for deposit and revenue aggregation.
type Category string

const (
	CategoryReusableCup    Category = "REUSABLE_CUP"
	CategoryMaintenanceCup Category = "MAINTENANCE_CUP"
	CategoryEquipmentOnly  Category = "EQUIPMENT_ONLY"
	CategoryStandardUnit   Category = "STANDARD_UNIT"
)

var (
	cupMarkers         = []string{"ecocup", "eco cup", "gobelet"}
	maintenanceMarkers = []string{"lavage", "perdu", "perte", "wash", "clean"}
	equipmentMarkers   = []string{"materiel"}
	onlyMarkers        = []string{"seul"}

	cupDefaultDeposit  = decimal.NewFromInt(1)
	unitDefaultDeposit = decimal.NewFromInt(30)
)

// Normalize folds case and strips diacritics so "MATÉRIEL" matches "materiel".
// Casers and transformers are stateful, so a fresh chain is built per call.
func Normalize(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	return cases.Fold().String(stripped)
}

// Classify derives the category of a product from its name. It is total:
// any input, including the empty string, maps to exactly one category.
func Classify(name string) Category {
	n := Normalize(name)
	if n == "" {
		return CategoryStandardUnit
	}
	if containsAny(n, equipmentMarkers) && containsAny(n, onlyMarkers) {
		return CategoryEquipmentOnly
	}
	if containsAny(n, cupMarkers) {
		if containsAny(n, maintenanceMarkers) {
			return CategoryMaintenanceCup
		}
		return CategoryReusableCup
	}
	return CategoryStandardUnit
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// ParseCategory accepts a stored category name, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.IsValid()
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryReusableCup, CategoryMaintenanceCup, CategoryEquipmentOnly, CategoryStandardUnit:
		return true
	}
	return false
}

// DefaultDeposit is the per-unit deposit used when a movement line carries no
// override. Maintenance cups land in the keg bucket and take the unit default.
func (c Category) DefaultDeposit() decimal.Decimal {
	switch c {
	case CategoryReusableCup:
		return cupDefaultDeposit
	case CategoryEquipmentOnly:
		return decimal.Zero
	default:
		return unitDefaultDeposit
	}
}

// CountsAsCup reports whether lines of this category go to the cup bucket.
func (c Category) CountsAsCup() bool {
	return c == CategoryReusableCup
}

// IsBillable reports whether OUT lines of this category count towards
// delivered volume and billed amount.
func (c Category) IsBillable() bool {
	return c != CategoryMaintenanceCup && c != CategoryEquipmentOnly
}

// CarriesDeposit is false only for equipment-only lines.
func (c Category) CarriesDeposit() bool {
	return c != CategoryEquipmentOnly
}

// ListedInCatalog reports whether products of this category show up in the
// active catalog.
func (c Category) ListedInCatalog() bool {
	return c != CategoryMaintenanceCup
}

func (c Category) String() string {
	return string(c)
}
