package models

// Recommendations is the categorized ranker output. Empty categories are omitted from JSON.
type Recommendations struct {
	BasedOnYourActivity  []Business `json:"basedOnYourActivity,omitempty"`
	DealsBasedOnActivity []Deal     `json:"dealsBasedOnActivity,omitempty"`
	ByYourPreferences    []Business `json:"byYourPreferences,omitempty"`
	PopularNearYou       []Business `json:"popularNearYou,omitempty"`
	DealsForYou          []Deal     `json:"dealsForYou,omitempty"`
	TrendingOverall      []Business `json:"trendingOverall,omitempty"`
}

// Category names, as they appear in the JSON response.
const (
	CategoryBasedOnYourActivity  = "basedOnYourActivity"
	CategoryDealsBasedOnActivity = "dealsBasedOnActivity"
	CategoryByYourPreferences    = "byYourPreferences"
	CategoryPopularNearYou       = "popularNearYou"
	CategoryDealsForYou          = "dealsForYou"
	CategoryTrendingOverall      = "trendingOverall"
)

// Counts returns the number of items per non-empty category.
func (r *Recommendations) Counts() map[string]int {
	out := map[string]int{}
	add := func(name string, n int) {
		if n > 0 {
			out[name] = n
		}
	}
	add(CategoryBasedOnYourActivity, len(r.BasedOnYourActivity))
	add(CategoryDealsBasedOnActivity, len(r.DealsBasedOnActivity))
	add(CategoryByYourPreferences, len(r.ByYourPreferences))
	add(CategoryPopularNearYou, len(r.PopularNearYou))
	add(CategoryDealsForYou, len(r.DealsForYou))
	add(CategoryTrendingOverall, len(r.TrendingOverall))
	return out
}
