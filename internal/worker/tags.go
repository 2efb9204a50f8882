package worker

import (
	"strings"

	"github.com/jitenkr2030/onetap-repost/internal/adapters"
)

const (
	maxTags          = 8
	maxTitleKeywords = 3
	minKeywordLength = 4
)

var categoryTags = map[string][]string{
	adapters.CategoryProperty:           {"realestate", "property", "house", "apartment"},
	adapters.CategoryVehicles:           {"car", "vehicle", "auto", "motor"},
	adapters.CategoryMobilesElectronics: {"electronics", "gadgets", "mobile", "tech"},
	adapters.CategoryJobs:               {"job", "career", "hiring", "employment"},
	adapters.CategoryServices:           {"service", "business", "professional", "local"},
	adapters.CategoryRentals:            {"rent", "rental", "lease"},
	adapters.CategoryEducation:          {"education", "courses", "learning"},
	adapters.CategoryPets:               {"pets", "animals", "adoption"},
	adapters.CategoryGeneralSales:       {"sale", "secondhand", "deals"},
}

// GenerateTags builds the tag set for a listing: the lower-cased category,
// up to three title keywords longer than three characters, then the static
// per-category tags, de-duplicated and capped at eight.
func GenerateTags(category, title string) []string {
	tags := []string{strings.ToLower(category)}

	keywords := 0
	for _, word := range strings.Fields(strings.ToLower(title)) {
		if keywords == maxTitleKeywords {
			break
		}
		if len(word) >= minKeywordLength {
			tags = append(tags, word)
			keywords++
		}
	}

	tags = append(tags, categoryTags[category]...)

	seen := make(map[string]struct{}, len(tags))
	unique := tags[:0]
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		unique = append(unique, tag)
		if len(unique) == maxTags {
			break
		}
	}

	return unique
}
