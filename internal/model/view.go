package model

// ViewKind describes how the visible stands were derived
type ViewKind string

const (
	ViewIdle       ViewKind = "idle"
	ViewUnfiltered ViewKind = "unfiltered"
	ViewFiltered   ViewKind = "filtered"
	ViewSorted     ViewKind = "sorted"
)

// FilterKind identifies which single filter is currently active
type FilterKind string

const (
	FilterNone      FilterKind = ""
	FilterCommunity FilterKind = "community"
	FilterSold      FilterKind = "sold"
	FilterType      FilterKind = "type"
)

// FilterState holds the last value applied for each filter. The values are
// tracked independently and are never combined into one predicate.
type FilterState struct {
	Community Community `json:"community"`
	IsSold    *bool     `json:"is_sold,omitempty"`
	StandType StandType `json:"stand_type"`
}

// DefaultFilterState returns the filter state of a fresh store
func DefaultFilterState() FilterState {
	return FilterState{
		Community: CommunityNone,
		StandType: StandTypeResidential,
	}
}

// View is the currently published sequence together with how it was built
type View struct {
	Kind   ViewKind   `json:"kind" yaml:"kind"`
	Filter FilterKind `json:"filter,omitempty" yaml:"filter,omitempty"`
	SortBy SortField  `json:"sort_by,omitempty" yaml:"sort_by,omitempty"`
	Stands []Stand    `json:"stands" yaml:"stands"`
	Total  int        `json:"total" yaml:"total"`
}
