package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"stockboard/internal/dashboard"
	"stockboard/internal/stats"
	"stockboard/pkg/stockboard"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command.
func newRootCmd() *cobra.Command {
	var server string
	var cache *stockboard.Cache

	root := &cobra.Command{
		Use:          "stockboard-cli",
		Short:        "Browse the stockboard index and price history from a terminal",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cache = stockboard.NewCache(stockboard.NewClient(server))
		},
	}
	root.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "stock-server base URL")

	getCache := func() *stockboard.Cache { return cache }
	root.AddCommand(newVersionCmd())
	root.AddCommand(newStatsCmd(getCache))
	root.AddCommand(newOverviewCmd(getCache))
	root.AddCommand(newSearchCmd(getCache))
	root.AddCommand(newSampleCmd(getCache))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockboard-cli %s\n", version)
		},
	}
}

func newStatsCmd(cache func() *stockboard.Cache) *cobra.Command {
	var rangeFlag string
	cmd := &cobra.Command{
		Use:   "stats SYMBOL",
		Short: "Show detail statistics and the chart range for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := stats.ParseRange(rangeFlag)
			if err != nil {
				return err
			}
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			ctx := cmd.Context()

			series, err := cache().Series(ctx, symbol)
			if err != nil {
				return err
			}
			// The index is optional here; a symbol without a row still has
			// a detail view.
			row, err := cache().Lookup(ctx, symbol)
			if err != nil {
				if !errors.Is(err, stockboard.ErrDataUnavailable) {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), dimStyle.Render("index unavailable: "+err.Error()))
				row = nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderDetail(row, series, window, stats.DefaultPolicy()))
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeFlag, "range", string(stats.Range1Y), "chart range: 1M, 3M, 6M, 1Y or ALL")
	return cmd
}

func newOverviewCmd(cache func() *stockboard.Cache) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show gainers, losers and the available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := cache().Index(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderOverview(dashboard.Summarize(idx.Stocks), dashboard.CollectFacets(idx.Stocks)))
			return nil
		},
	}
}

func newSearchCmd(cache func() *stockboard.Cache) *cobra.Command {
	var (
		filter dashboard.Filter
		sortBy string
		desc   bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search the index by symbol, name, exchange, industry or sector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				filter.Query = args[0]
			}
			if sortBy != "" && !slices.Contains(dashboard.SortFields, sortBy) {
				return fmt.Errorf("unknown sort field %q (want one of %s)", sortBy, strings.Join(dashboard.SortFields, ", "))
			}
			idx, err := cache().Index(cmd.Context())
			if err != nil {
				return err
			}
			rows := dashboard.Search(idx.Stocks, filter)
			if sortBy != "" {
				dashboard.SortBy(rows, sortBy, desc)
			}
			total := len(rows)
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTable(rows))
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d of %d matches", len(rows), total)))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Exchange, "exchange", "", "exchange code (Q, N, A, P)")
	cmd.Flags().StringVar(&filter.Sector, "sector", "", "sector, exact match")
	cmd.Flags().StringVar(&filter.Industry, "industry", "", "industry, exact match")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort field: "+strings.Join(dashboard.SortFields, ", "))
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to print, 0 for all")
	return cmd
}

func newSampleCmd(cache func() *stockboard.Cache) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Show a random selection of stocks, like the landing page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			rows, err := cache().Sample(cmd.Context(), n, rng)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", 100, "number of stocks")
	return cmd
}
