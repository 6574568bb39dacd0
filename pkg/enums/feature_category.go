package enums

import "fmt"

// FeatureCategory groups catalog features for the storefront filters.
type FeatureCategory string

const (
	FeatureCategorySeguridad   FeatureCategory = "seguridad"
	FeatureCategoryConfort     FeatureCategory = "confort"
	FeatureCategoryTecnologia  FeatureCategory = "tecnologia"
	FeatureCategoryRendimiento FeatureCategory = "rendimiento"
	FeatureCategoryExterior    FeatureCategory = "exterior"
	FeatureCategoryInterior    FeatureCategory = "interior"
)

var validFeatureCategories = []FeatureCategory{
	FeatureCategorySeguridad,
	FeatureCategoryConfort,
	FeatureCategoryTecnologia,
	FeatureCategoryRendimiento,
	FeatureCategoryExterior,
	FeatureCategoryInterior,
}

// String returns the literal string for the category.
func (f FeatureCategory) String() string {
	return string(f)
}

// IsValid reports whether the category is known.
func (f FeatureCategory) IsValid() bool {
	for _, candidate := range validFeatureCategories {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFeatureCategory converts raw input into a FeatureCategory.
func ParseFeatureCategory(value string) (FeatureCategory, error) {
	for _, candidate := range validFeatureCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feature category %q", value)
}
