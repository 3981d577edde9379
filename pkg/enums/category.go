package enums

import "fmt"

// ProductCategory represents the canonical product categories supported by the catalog.
type ProductCategory string

const (
	ProductCategoryDairy        ProductCategory = "dairy"
	ProductCategoryBakery       ProductCategory = "bakery"
	ProductCategoryProduce      ProductCategory = "produce"
	ProductCategoryMeat         ProductCategory = "meat"
	ProductCategorySeafood      ProductCategory = "seafood"
	ProductCategoryFrozen       ProductCategory = "frozen"
	ProductCategoryBeverage     ProductCategory = "beverage"
	ProductCategorySnack        ProductCategory = "snack"
	ProductCategoryPantry       ProductCategory = "pantry"
	ProductCategoryHousehold    ProductCategory = "household"
	ProductCategoryPersonalCare ProductCategory = "personal_care"
)

var validProductCategories = []ProductCategory{
	ProductCategoryDairy,
	ProductCategoryBakery,
	ProductCategoryProduce,
	ProductCategoryMeat,
	ProductCategorySeafood,
	ProductCategoryFrozen,
	ProductCategoryBeverage,
	ProductCategorySnack,
	ProductCategoryPantry,
	ProductCategoryHousehold,
	ProductCategoryPersonalCare,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts a raw string into a ProductCategory.
func ParseProductCategory(raw string) (ProductCategory, error) {
	candidate := ProductCategory(raw)
	if !candidate.IsValid() {
		return "", fmt.Errorf("unknown product category %q", raw)
	}
	return candidate, nil
}
