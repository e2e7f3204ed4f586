package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStandType = errors.New("unknown stand type")
	ErrUnknownCommunity = errors.New("unknown community")
	ErrUnknownSortField = errors.New("unknown sort field")
)

// StandType is the zoning category of a stand
type StandType string

const (
	StandTypeResidential  StandType = "residential"
	StandTypeCommercial   StandType = "commercial"
	StandTypeIndustrial   StandType = "industrial"
	StandTypeAgricultural StandType = "agricultural"
)

// StandTypes lists every valid stand type in display order
var StandTypes = []StandType{
	StandTypeResidential,
	StandTypeCommercial,
	StandTypeIndustrial,
	StandTypeAgricultural,
}

var standTypeAliases = map[string]StandType{
	"residential":  StandTypeResidential,
	"res":          StandTypeResidential,
	"commercial":   StandTypeCommercial,
	"comm":         StandTypeCommercial,
	"industrial":   StandTypeIndustrial,
	"ind":          StandTypeIndustrial,
	"agricultural": StandTypeAgricultural,
	"agri":         StandTypeAgricultural,
}

// ParseStandType converts user input into a StandType
func ParseStandType(s string) (StandType, error) {
	if t, ok := standTypeAliases[normalizeToken(s)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStandType, s)
}

// String implements fmt.Stringer
func (t StandType) String() string { return string(t) }

// MarshalText implements encoding.TextMarshaler
func (t StandType) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *StandType) UnmarshalText(text []byte) error {
	parsed, err := ParseStandType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer interface
func (t StandType) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements sql.Scanner interface
func (t *StandType) Scan(value interface{}) error {
	raw, err := scanString(value)
	if err != nil {
		return fmt.Errorf("stand_type: %w", err)
	}
	return t.UnmarshalText([]byte(raw))
}

// Community is the density zoning of the area a stand belongs to
type Community string

const (
	CommunityNone          Community = "none"
	CommunityLowDensity    Community = "low-density"
	CommunityMediumDensity Community = "medium-density"
	CommunityHighDensity   Community = "high-density"
)

// Communities lists every valid community in display order
var Communities = []Community{
	CommunityNone,
	CommunityLowDensity,
	CommunityMediumDensity,
	CommunityHighDensity,
}

var communityAliases = map[string]Community{
	"none":           CommunityNone,
	"":               CommunityNone,
	"low-density":    CommunityLowDensity,
	"low":            CommunityLowDensity,
	"medium-density": CommunityMediumDensity,
	"medium":         CommunityMediumDensity,
	"high-density":   CommunityHighDensity,
	"high":           CommunityHighDensity,
}

// ParseCommunity converts user input into a Community
func ParseCommunity(s string) (Community, error) {
	if c, ok := communityAliases[normalizeToken(s)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommunity, s)
}

// String implements fmt.Stringer
func (c Community) String() string { return string(c) }

// MarshalText implements encoding.TextMarshaler
func (c Community) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Community) UnmarshalText(text []byte) error {
	parsed, err := ParseCommunity(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer interface
func (c Community) Value() (driver.Value, error) {
	return string(c), nil
}

// Scan implements sql.Scanner interface
func (c *Community) Scan(value interface{}) error {
	if value == nil {
		*c = CommunityNone
		return nil
	}
	raw, err := scanString(value)
	if err != nil {
		return fmt.Errorf("community: %w", err)
	}
	return c.UnmarshalText([]byte(raw))
}

// SortField names the attribute the visible stands are ordered by
type SortField string

const (
	SortByPrice SortField = "price"
	SortBySize  SortField = "size"
)

// ParseSortField converts user input into a SortField
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(normalizeToken(s)); f {
	case SortByPrice, SortBySize:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
}

// normalizeToken lowercases and joins words with dashes so that
// "Low Density", "low_density" and "low-density" compare equal
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.Join(strings.Fields(s), "-")
}

func scanString(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported type %T", value)
	}
}
