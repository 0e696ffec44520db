package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Rigger/internal/api"
	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
	"github.com/MikeSquared-Agency/Rigger/internal/rules"
)

type options struct {
	catalogPath  string
	format       string
	verbose      bool
	refinePSU    bool
	preferBrands []string
	avoidBrands  []string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "riggerctl",
		Short: "Offline PC build recommendations",
		Long: `riggerctl runs the Rigger build engine against a catalog snapshot file
(YAML or JSON, {"components": [...]}) without a database or message bus.

Examples:
  riggerctl recommend --catalog catalog.yaml --purpose gaming_mid --budget 80000
  riggerctl compare --catalog catalog.yaml --purpose gaming_budget --budgets 40000,60000,80000
  riggerctl psu --gpu "RTX 4070 Ti" --cpu "Ryzen 7 7700X"
  riggerctl tier --category GPU "RX 6700 XT"`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.catalogPath, "catalog", "c", "catalog.yaml", "Path to the catalog snapshot")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "table", "Output format: table, json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log engine decisions to stderr")

	root.AddCommand(newRecommendCmd(opts), newCompareCmd(opts), newPSUCmd(opts), newTierCmd(opts))
	return root
}

func (o *options) service(cmd *cobra.Command) (*recommend.Service, error) {
	cat, err := catalog.LoadFile(o.catalogPath)
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	engineOpts := engine.DefaultOptions()
	engineOpts.RefinePSUWattage = o.refinePSU
	a := engine.NewAssembler(cat, engineOpts, logger)
	return recommend.NewService(a, buildlog.NewMemoryStore(), nil, nil, recommend.DefaultOptions(), logger), nil
}

func (o *options) addBrandFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.preferBrands, "prefer", nil, "Brands to prefer when a candidate matches")
	cmd.Flags().StringSliceVar(&o.avoidBrands, "avoid", nil, "Brands to exclude")
	cmd.Flags().BoolVar(&o.refinePSU, "refine-psu", false, "Re-size the PSU once the CPU tier is known")
}

func newRecommendCmd(opts *options) *cobra.Command {
	var purpose string
	var budget int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend one build for a purpose and budget",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Recommend(context.Background(), engine.BuildRequirements{
				Purpose:      rules.Purpose(purpose),
				Budget:       budget,
				PreferBrands: opts.preferBrands,
				AvoidBrands:  opts.avoidBrands,
			}, buildlog.SourceAPI)
			if err != nil {
				return err
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), api.RecommendResponse{
					BuildID:     res.BuildID,
					Build:       res.Build,
					Explanation: api.ExplainBuild(res.Build),
				})
			}
			return printBuild(cmd.OutOrStdout(), res.Build)
		},
	}
	cmd.Flags().StringVarP(&purpose, "purpose", "p", string(rules.PurposeGamingMid), "Build purpose")
	cmd.Flags().IntVarP(&budget, "budget", "b", 0, "Budget in BDT")
	_ = cmd.MarkFlagRequired("budget")
	opts.addBrandFlags(cmd)
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var purpose string
	var budgets []int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare builds at several budgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rules.ParsePurpose(purpose)
			if err != nil {
				return err
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Compare(context.Background(), p, budgets, engine.Preferences{
				PreferBrands: opts.preferBrands,
				AvoidBrands:  opts.avoidBrands,
			})
			if err != nil {
				return err
			}
			insights := api.CompareInsights(res.Comparison)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), api.CompareResponse{CompareResult: res, Insights: insights})
			}
			return printComparison(cmd.OutOrStdout(), res, insights)
		},
	}
	cmd.Flags().StringVarP(&purpose, "purpose", "p", string(rules.PurposeGamingMid), "Build purpose")
	cmd.Flags().IntSliceVar(&budgets, "budgets", nil, "Comma-separated budgets in BDT")
	_ = cmd.MarkFlagRequired("budgets")
	opts.addBrandFlags(cmd)
	return cmd
}

func newPSUCmd(opts *options) *cobra.Command {
	var gpu, cpu, cpuTier string
	cmd := &cobra.Command{
		Use:   "psu",
		Short: "Estimate the PSU wattage for a GPU and CPU",
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := rules.Classify(catalog.CategoryCPU, cpu)
			if cpuTier != "" {
				tier = rules.Tier(strings.ToUpper(cpuTier))
				if tier != rules.TierHigh && tier != rules.TierMid && tier != rules.TierLow {
					return fmt.Errorf("unknown cpu tier %q (want HIGH, MID or LOW)", cpuTier)
				}
			}
			watts := rules.EstimatePSUWattage(gpu, tier)
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"gpu": gpu, "cpu_tier": tier, "min_wattage": watts,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d W (cpu tier %s)\n", watts, tier)
			return nil
		},
	}
	cmd.Flags().StringVar(&gpu, "gpu", "", "GPU name; empty means integrated graphics")
	cmd.Flags().StringVar(&cpu, "cpu", "", "CPU name, classified into a tier")
	cmd.Flags().StringVar(&cpuTier, "cpu-tier", "", "CPU tier, overrides --cpu")
	return cmd
}

func newTierCmd(opts *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "tier NAME...",
		Short: "Classify component names into HIGH, MID or LOW",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.ParseCategory(category)
			if err != nil {
				return err
			}
			tiers := make(map[string]rules.Tier, len(args))
			for _, name := range args {
				tiers[name] = rules.Classify(cat, name)
			}
			if opts.format == "json" {
				return writeJSON(cmd.OutOrStdout(), tiers)
			}
			for _, name := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", tiers[name], name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", string(catalog.CategoryCPU), "Component category")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBuild(w io.Writer, b *engine.Build) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tCOMPONENT\tPRICE\tSCORE")
	for _, c := range b.Categories() {
		comp, _ := b.Component(c)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c, comp.Name, api.Taka(comp.Price), comp.PerformanceScore)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t%.1f\n", api.Taka(b.TotalPrice), b.AvgPerformanceScore)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "remaining: %s of %s\n", api.Taka(b.RemainingBudget), api.Taka(b.Budget))
	for _, warn := range b.Bottlenecks.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	return nil
}

func printComparison(w io.Writer, res *recommend.CompareResult, insights api.Insights) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BUDGET\tTOTAL\tSCORE\tVALUE")
	for i, b := range res.Comparison.Builds {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.2f\n",
			api.Taka(res.Budgets[i]), api.Taka(b.TotalPrice), b.AvgPerformanceScore, res.Comparison.ValueScores[i])
	}
	for _, f := range res.Failures {
		fmt.Fprintf(tw, "%s\tfailed: %s\t\t\n", api.Taka(f.Budget), f.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, r := range insights.Recommendations {
		fmt.Fprintln(w, r)
	}
	return nil
}
