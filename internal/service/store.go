package service

import (
	"iter"
	"log/slog"
	"sync"

	"standfinder/internal/model"
)

// Store operation names, used for logging and metrics
const (
	OpSearchSuburb     = "search_suburb"
	OpSearchCity       = "search_city"
	OpSearchType       = "search_type"
	OpSearchCommunity  = "search_community"
	OpSort             = "sort"
	OpFilterCommunity  = "filter_community"
	OpFilterSaleStatus = "filter_sale_status"
	OpFilterType       = "filter_type"
	OpResetFilters     = "reset_filters"
)

// StoreOptions configures a ListingStore
type StoreOptions struct {
	// LegacySizeSort reproduces the historical "size" sort, which ordered
	// the unfiltered stored set by price.
	LegacySizeSort bool
	Logger         *slog.Logger
	// OnOperation is called after every state-changing operation
	OnOperation func(op string)
}

// ListingStore holds the browse state of one UI session.
//
// The visible set is never mutated in place: it is recomputed from the
// stored set, the single active predicate and the active comparator each
// time one of them changes, then published to subscribers.
type ListingStore struct {
	base []model.Stand
	opts StoreOptions

	mu         sync.RWMutex
	started    bool
	stored     []model.Stand
	predicate  Predicate
	filterKind model.FilterKind
	less       Less
	sortField  model.SortField
	filters    model.FilterState
	visible    []model.Stand

	stream *Broadcaster
}

// NewListingStore creates a store over the base dataset.
// The caller must not modify base afterwards.
func NewListingStore(base []model.Stand, opts StoreOptions) *ListingStore {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ListingStore{
		base:    base,
		opts:    opts,
		stored:  base,
		filters: model.DefaultFilterState(),
		visible: []model.Stand{},
		stream:  NewBroadcaster(),
	}
}

// Locations yields the distinct suburbs of stands in first-seen order
func Locations(stands []model.Stand) iter.Seq[string] {
	return Distinct(stands, func(st model.Stand) string { return st.Suburb })
}

// Cities yields the distinct cities of stands in first-seen order
func Cities(stands []model.Stand) iter.Seq[string] {
	return Distinct(stands, func(st model.Stand) string { return st.City })
}

// AllLocations yields the distinct suburbs of the base dataset
func (s *ListingStore) AllLocations() iter.Seq[string] {
	return Locations(s.base)
}

// CitySuggestions yields the distinct cities of the base dataset
func (s *ListingStore) CitySuggestions() iter.Seq[string] {
	return Cities(s.base)
}

// SearchBySuburb replaces the stored set with the stands whose suburb
// contains substr
func (s *ListingStore) SearchBySuburb(substr string) {
	s.search(OpSearchSuburb, SuburbContains(substr))
}

// SearchByCity replaces the stored set with the stands whose city contains
// substr
func (s *ListingStore) SearchByCity(substr string) {
	s.search(OpSearchCity, CityContains(substr))
}

// SearchByType replaces the stored set with the stands of type t
func (s *ListingStore) SearchByType(t model.StandType) {
	s.search(OpSearchType, TypeIs(t))
}

// SearchByCommunity replaces the stored set with the stands in community c
func (s *ListingStore) SearchByCommunity(c model.Community) {
	s.search(OpSearchCommunity, CommunityIs(c))
}

// SortBy orders the visible stands ascending by field.
// Unknown fields leave the state untouched.
func (s *ListingStore) SortBy(field model.SortField) {
	s.mu.Lock()
	switch field {
	case model.SortByPrice:
		s.less = ByPrice
	case model.SortBySize:
		if s.opts.LegacySizeSort {
			s.predicate = nil
			s.filterKind = model.FilterNone
			s.less = ByPrice
		} else {
			s.less = BySize
		}
	default:
		s.mu.Unlock()
		s.opts.Logger.Debug("ignoring unknown sort field", "field", field)
		return
	}
	s.sortField = field
	if !s.started && !(field == model.SortBySize && s.opts.LegacySizeSort) {
		// Nothing is visible before the first search. The ordering is kept
		// for it and the empty set is republished.
		s.publishLocked(OpSort)
		return
	}
	s.commitLocked(OpSort)
}

// FilterByCommunity shows only the stored stands in community c
func (s *ListingStore) FilterByCommunity(c model.Community) {
	s.mu.Lock()
	s.filters.Community = c
	s.filterLocked(OpFilterCommunity, model.FilterCommunity, CommunityIs(c))
}

// FilterBySaleStatus shows only the stored stands with the given sale status
func (s *ListingStore) FilterBySaleStatus(sold bool) {
	s.mu.Lock()
	s.filters.IsSold = &sold
	s.filterLocked(OpFilterSaleStatus, model.FilterSold, SoldIs(sold))
}

// FilterByType shows only the stored stands of type t
func (s *ListingStore) FilterByType(t model.StandType) {
	s.mu.Lock()
	s.filters.StandType = t
	s.filterLocked(OpFilterType, model.FilterType, TypeIs(t))
}

// ResetFilters publishes the stored set without any filter or ordering
func (s *ListingStore) ResetFilters() {
	s.mu.Lock()
	s.predicate = nil
	s.filterKind = model.FilterNone
	s.less = nil
	s.sortField = ""
	s.commitLocked(OpResetFilters)
}

// Stands returns a copy of the visible stands
func (s *ListingStore) Stands() []model.Stand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Stand, len(s.visible))
	copy(out, s.visible)
	return out
}

// View describes the visible stands and how they were derived
func (s *ListingStore) View() model.View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stands := make([]model.Stand, len(s.visible))
	copy(stands, s.visible)
	return model.View{
		Kind:   s.kindLocked(),
		Filter: s.filterKind,
		SortBy: s.sortField,
		Stands: stands,
		Total:  len(stands),
	}
}

// Filters returns the last value applied for each filter
func (s *ListingStore) Filters() model.FilterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fs := s.filters
	if fs.IsSold != nil {
		sold := *fs.IsSold
		fs.IsSold = &sold
	}
	return fs
}

// Subscribe returns a channel that receives the visible stands now and
// after every change. Received slices are shared and must not be modified.
func (s *ListingStore) Subscribe() (<-chan []model.Stand, func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stream.Subscribe(s.visible)
}

// Subscribers returns the number of live subscriptions
func (s *ListingStore) Subscribers() int {
	return s.stream.Count()
}

// Close ends every subscription
func (s *ListingStore) Close() {
	s.stream.Close()
}

func (s *ListingStore) search(op string, pred Predicate) {
	stored := ApplyFilter(s.base, pred)

	s.mu.Lock()
	s.stored = stored
	s.commitLocked(op)
}

// filterLocked swaps in pred as the only active predicate. Any ordering is
// dropped, matching a fresh derivation from the stored set.
func (s *ListingStore) filterLocked(op string, kind model.FilterKind, pred Predicate) {
	s.predicate = pred
	s.filterKind = kind
	s.less = nil
	s.sortField = ""
	s.commitLocked(op)
}

// commitLocked recomputes and publishes the visible set, then releases s.mu
func (s *ListingStore) commitLocked(op string) {
	s.started = true
	s.visible = SortStands(ApplyFilter(s.stored, s.predicate), s.less)
	s.publishLocked(op)
}

// publishLocked sends the visible set to subscribers, then releases s.mu
func (s *ListingStore) publishLocked(op string) {
	visible := s.visible
	stored := len(s.stored)
	kind := s.kindLocked()
	s.stream.Publish(visible)
	s.mu.Unlock()

	s.opts.Logger.Debug("store updated",
		"op", op,
		"view", kind,
		"stored", stored,
		"visible", len(visible),
	)
	if s.opts.OnOperation != nil {
		s.opts.OnOperation(op)
	}
}

func (s *ListingStore) kindLocked() model.ViewKind {
	switch {
	case !s.started:
		return model.ViewIdle
	case s.less != nil:
		return model.ViewSorted
	case s.predicate != nil:
		return model.ViewFiltered
	default:
		return model.ViewUnfiltered
	}
}
