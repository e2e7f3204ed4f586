package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"standfinder/internal/model"
	"standfinder/internal/service"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// queryOptions mirrors what a UI session does: one search, then filters
// and a sort applied in order
type queryOptions struct {
	By             string
	Value          string
	Filters        []string // kind=value, each replaces the previous
	Sort           string
	LegacySizeSort bool
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search, filter and sort the fixture",
	Example: `  standctl query --by suburb --value Borrow
  standctl query --by city --value Harare --filter sold=false --sort price -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts queryOptions
		opts.By, _ = cmd.Flags().GetString("by")
		opts.Value, _ = cmd.Flags().GetString("value")
		opts.Filters, _ = cmd.Flags().GetStringArray("filter")
		opts.Sort, _ = cmd.Flags().GetString("sort")
		opts.LegacySizeSort, _ = cmd.Flags().GetBool("legacy-size-sort")
		output, _ := cmd.Flags().GetString("output")

		stands, err := loadFixture(cmd)
		if err != nil {
			return err
		}
		view, err := runQuery(stands, opts)
		if err != nil {
			return err
		}
		return writeView(cmd.OutOrStdout(), view, output)
	},
}

func init() {
	queryCmd.Flags().String("by", "suburb", "Search field: suburb, city, type or community")
	queryCmd.Flags().String("value", "", "Search value (substring for suburb and city)")
	queryCmd.Flags().StringArray("filter", nil, "Filter as kind=value (community, sold, type); repeatable")
	queryCmd.Flags().String("sort", "", "Sort field: price or size")
	queryCmd.Flags().Bool("legacy-size-sort", false, "Sort by price when size is requested, dropping the filter")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(stands []model.Stand, opts queryOptions) (model.View, error) {
	store := service.NewListingStore(stands, service.StoreOptions{
		LegacySizeSort: opts.LegacySizeSort,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	defer store.Close()

	switch strings.ToLower(opts.By) {
	case "suburb":
		store.SearchBySuburb(opts.Value)
	case "city":
		store.SearchByCity(opts.Value)
	case "type":
		t, err := model.ParseStandType(opts.Value)
		if err != nil {
			return model.View{}, err
		}
		store.SearchByType(t)
	case "community":
		c, err := model.ParseCommunity(opts.Value)
		if err != nil {
			return model.View{}, err
		}
		store.SearchByCommunity(c)
	default:
		return model.View{}, fmt.Errorf("invalid search field %q: must be one of suburb, city, type, community", opts.By)
	}

	for _, f := range opts.Filters {
		kind, value, ok := strings.Cut(f, "=")
		if !ok {
			return model.View{}, fmt.Errorf("invalid filter %q: want kind=value", f)
		}
		switch model.FilterKind(strings.ToLower(kind)) {
		case model.FilterCommunity:
			c, err := model.ParseCommunity(value)
			if err != nil {
				return model.View{}, err
			}
			store.FilterByCommunity(c)
		case model.FilterSold:
			sold, err := strconv.ParseBool(value)
			if err != nil {
				return model.View{}, fmt.Errorf("invalid sale status %q: %w", value, err)
			}
			store.FilterBySaleStatus(sold)
		case model.FilterType:
			t, err := model.ParseStandType(value)
			if err != nil {
				return model.View{}, err
			}
			store.FilterByType(t)
		default:
			return model.View{}, fmt.Errorf("invalid filter kind %q: must be one of community, sold, type", kind)
		}
	}

	if opts.Sort != "" {
		field, err := model.ParseSortField(opts.Sort)
		if err != nil {
			return model.View{}, err
		}
		store.SortBy(field)
	}

	return store.View(), nil
}

func writeView(w io.Writer, view model.View, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(view)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSUBURB\tCITY\tPRICE\tSIZE\tSOLD\tTYPE\tCOMMUNITY")
		for _, s := range view.Stands {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%.0f\t%.0f\t%t\t%s\t%s\n",
				s.ID, s.Suburb, s.City, s.Price, s.Size, s.IsSold, s.StandType, s.Community)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d stand(s), view: %s\n", view.Total, view.Kind)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
