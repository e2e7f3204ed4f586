package service

import (
	"iter"
	"sort"
	"strings"

	"standfinder/internal/model"
)

// Predicate reports whether a stand belongs in a derived set
type Predicate func(model.Stand) bool

// Less orders two stands for SortStands
type Less func(a, b model.Stand) bool

// ApplyFilter returns the stands matching pred, in input order.
// A nil predicate keeps every stand. The input slice is never modified.
func ApplyFilter(stands []model.Stand, pred Predicate) []model.Stand {
	out := make([]model.Stand, 0, len(stands))
	for _, s := range stands {
		if pred == nil || pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// SortStands returns a sorted copy of stands. Ties keep their input order.
func SortStands(stands []model.Stand, less Less) []model.Stand {
	out := make([]model.Stand, len(stands))
	copy(out, stands)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// SuburbContains matches stands whose suburb contains substr (case-sensitive)
func SuburbContains(substr string) Predicate {
	return func(s model.Stand) bool {
		return strings.Contains(s.Suburb, substr)
	}
}

// CityContains matches stands whose city contains substr (case-sensitive)
func CityContains(substr string) Predicate {
	return func(s model.Stand) bool {
		return strings.Contains(s.City, substr)
	}
}

// TypeIs matches stands of exactly the given type
func TypeIs(t model.StandType) Predicate {
	return func(s model.Stand) bool {
		return s.StandType == t
	}
}

// CommunityIs matches stands in exactly the given community
func CommunityIs(c model.Community) Predicate {
	return func(s model.Stand) bool {
		return s.Community == c
	}
}

// SoldIs matches stands with the given sale status
func SoldIs(sold bool) Predicate {
	return func(s model.Stand) bool {
		return s.IsSold == sold
	}
}

// ByPrice orders stands by ascending price
func ByPrice(a, b model.Stand) bool { return a.Price < b.Price }

// BySize orders stands by ascending size
func BySize(a, b model.Stand) bool { return a.Size < b.Size }

// Distinct yields each value of key over stands once, in first-seen order.
// The returned sequence can be ranged over any number of times.
func Distinct(stands []model.Stand, key func(model.Stand) string) iter.Seq[string] {
	return func(yield func(string) bool) {
		seen := make(map[string]struct{}, len(stands))
		for _, s := range stands {
			k := key(s)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			if !yield(k) {
				return
			}
		}
	}
}
