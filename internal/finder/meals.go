package finder

import "regexp"

// MealFilter selects which venues qualify for a meal category. Amenities is
// the set of OSM amenity tags to include; the remaining fields are optional
// constraints applied inside the POI query.
type MealFilter struct {
	Amenities      []string
	IncludeCuisine string // case-insensitive cuisine regex a venue must match
	ExcludeCuisine string // case-insensitive cuisine regex a venue must not match
	ExcludeName    string // case-insensitive name regex a venue must not match
	Diet           string // "vegan" or "vegetarian": requires diet:<x>=yes
}

// Excludes reports whether a venue's name or cuisine trips one of the
// filter's exclusion patterns. The same patterns ride inside the POI query,
// but mirrors are not trusted to apply them: excluded venues are dropped
// again after normalization.
func (f MealFilter) Excludes(name, cuisine string) bool {
	if f.ExcludeName != "" && regexp.MustCompile("(?i)"+f.ExcludeName).MatchString(name) {
		return true
	}
	if f.ExcludeCuisine != "" && regexp.MustCompile("(?i)"+f.ExcludeCuisine).MatchString(cuisine) {
		return true
	}
	return false
}

// FilterForMeal maps a meal category to its venue filter. Unrecognized or
// empty categories fall back to the dinner/lunch set.
func FilterForMeal(meal string) MealFilter {
	switch meal {
	case "snack":
		return MealFilter{Amenities: []string{"cafe", "bakery", "ice_cream"}}
	case "coffee":
		return MealFilter{Amenities: []string{"cafe", "coffee_shop"}}
	case "breakfast":
		return MealFilter{
			Amenities:      []string{"restaurant", "cafe", "fast_food"},
			ExcludeCuisine: "pizza",
			ExcludeName:    "Domino",
		}
	case "dessert":
		return MealFilter{Amenities: []string{"ice_cream", "cafe", "bakery"}}
	case "drinks":
		return MealFilter{Amenities: []string{"bar", "pub", "biergarten"}}
	case "pizza":
		return MealFilter{
			Amenities:      []string{"restaurant", "fast_food"},
			IncludeCuisine: "pizza",
		}
	case "vegan":
		return MealFilter{Amenities: []string{"restaurant", "cafe"}, Diet: "vegan"}
	case "vegetarian":
		return MealFilter{Amenities: []string{"restaurant", "cafe"}, Diet: "vegetarian"}
	default:
		// dinner, lunch, and anything unknown
		return MealFilter{Amenities: []string{"restaurant", "fast_food", "pub"}}
	}
}
