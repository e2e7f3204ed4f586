package model

// SearchRequest represents a search over the base dataset
type SearchRequest struct {
	By    string `json:"by" binding:"required"` // suburb, city, type, community
	Value string `json:"value"`
}

// SortRequest represents a sort of the visible stands
type SortRequest struct {
	Field string `json:"field" binding:"required"` // price, size
}

// FilterRequest represents a single-filter change
type FilterRequest struct {
	Kind  string `json:"kind" binding:"required"` // community, sold, type
	Value string `json:"value"`
}

// SessionResponse is returned when a browse session is created
type SessionResponse struct {
	ID string `json:"id"`
}

// StandsResponse represents the published view of a session
type StandsResponse struct {
	View
	Filters FilterState `json:"filters"`
	Took    int64       `json:"took_ms"` // Response time in milliseconds
}

// SuggestionsResponse represents the distinct values offered by a search box
type SuggestionsResponse struct {
	Values []string `json:"values"`
	Total  int      `json:"total"`
}
