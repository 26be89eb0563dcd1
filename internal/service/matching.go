package service

import (
	"slices"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// MatchesSelection reports whether a company satisfies every constrained
// dimension of the selection. An empty set matches any value.
func MatchesSelection(company entity.Company, selection entity.Selection) bool {
	for _, d := range entity.Dimensions {
		set := selection.Values(d)
		if len(set) == 0 {
			continue
		}
		if !slices.Contains(set, company.ClassificationValue(d)) {
			return false
		}
	}
	return true
}

// FilterCompanies keeps the live companies matching the selection, in input order.
func FilterCompanies(companies []entity.Company, selection entity.Selection) []entity.Company {
	out := make([]entity.Company, 0, len(companies))
	for _, c := range companies {
		if c.IsDeleted() || !MatchesSelection(c, selection) {
			continue
		}
		out = append(out, c)
	}
	return out
}
