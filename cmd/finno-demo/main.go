// Command finno-demo trains the engine on a synthetic population and prints
// scores, forecasts, a what-if simulation and recommendations as tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/okian/finno/internal/app"
	"github.com/okian/finno/internal/config"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/pkg/logger"
	"github.com/okian/finno/pkg/money"

	"github.com/olekukonko/tablewriter"
)

type demoOptions struct {
	users     int
	perUser   int
	seed      int64
	show      int
	category  string
	reduction float64
	goals     string
}

func main() {
	opts := demoOptions{}
	flag.IntVar(&opts.users, "users", 20, "number of synthetic users")
	flag.IntVar(&opts.perUser, "transactions", 50, "transactions per synthetic user")
	flag.Int64Var(&opts.seed, "seed", 42, "random seed")
	flag.IntVar(&opts.show, "show", 5, "users to list in the score table")
	flag.StringVar(&opts.category, "category", string(model.CategoryFood), "category to cut in the simulation")
	flag.Float64Var(&opts.reduction, "reduction", 15, "simulated reduction percent")
	flag.StringVar(&opts.goals, "goals", "savings,expense_reduction", "comma-separated recommendation goals")
	flag.Parse()

	if err := logger.InitWithWriter(os.Stderr, logger.FormatText); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn")

	if err := run(context.Background(), os.Stdout, opts); err != nil {
		logger.Get().Error(context.Background(), "demo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, opts demoOptions) error {
	if opts.users < 1 {
		return fmt.Errorf("users must be at least 1, got %d", opts.users)
	}
	cfg := config.New()
	cfg.Seed = opts.seed
	cfg.DemoUsers = opts.users
	cfg.DemoTransactionsPerUser = opts.perUser
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine := app.New(append(app.FromConfig(cfg), app.WithLogger(logger.Get().Named("engine")))...)
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer engine.Stop()

	if err := printScores(ctx, w, engine, opts.show); err != nil {
		return err
	}

	userID, err := engine.ResolveUser(ctx, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\n=== Details for %s ===\n", userID)
	if err := printExplanation(ctx, w, engine, userID); err != nil {
		return err
	}
	if err := printForecast(ctx, w, engine, userID); err != nil {
		return err
	}
	iv := forecast.Intervention{Category: model.Category(opts.category), ReductionPercent: opts.reduction}
	if err := printSimulation(ctx, w, engine, userID, iv); err != nil {
		return err
	}
	return printRecommendations(ctx, w, engine, userID, parseGoals(opts.goals))
}

func printScores(ctx context.Context, w io.Writer, engine *app.Engine, show int) error {
	fmt.Fprintln(w, "=== Financial health ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"User", "Score", "Balance", "Income", "Expenses", "Savings %", "Cohort"})

	users := engine.Snapshot().Users
	if show > len(users) {
		show = len(users)
	}
	for _, id := range users[:show] {
		d, err := engine.Dashboard(ctx, id)
		if err != nil {
			return err
		}
		cohort := "-"
		if c, err := engine.Cohort(ctx, id); err == nil {
			cohort = fmt.Sprintf("%d/%d", c.Label, c.Clusters)
		}
		table.Append([]string{
			id,
			fmt.Sprintf("%.1f", d.HealthScore),
			money.FormatInt(d.CurrentBalance),
			money.FormatInt(d.MonthlyIncome),
			money.FormatInt(d.MonthlyExpenses),
			fmt.Sprintf("%.1f", d.SavingsRate),
			cohort,
		})
	}
	table.Render()
	return nil
}

func printExplanation(ctx context.Context, w io.Writer, engine *app.Engine, userID string) error {
	hs, err := engine.HealthScore(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nScore %.1f (base %.1f)\n", hs.Score, hs.BaseValue)

	names := make([]string, 0, len(hs.Explanations))
	for name := range hs.Explanations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := hs.Explanations[names[i]], hs.Explanations[names[j]]
		if abs(a) != abs(b) {
			return abs(a) > abs(b)
		}
		return names[i] < names[j]
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Feature", "Contribution"})
	for _, name := range names {
		table.Append([]string{name, fmt.Sprintf("%+.2f", hs.Explanations[name])})
	}
	table.Render()
	return nil
}

func printForecast(ctx context.Context, w io.Writer, engine *app.Engine, userID string) error {
	ins, err := engine.Insights(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nForecast")
	if ins.Forecast.Fallback {
		fmt.Fprintln(w, "(no trained forecast, showing the default series)")
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Projected"})
	for i, amount := range ins.Forecast.Amounts {
		label := fmt.Sprintf("Week %d", i+1)
		if i < len(ins.Forecast.Categories) {
			label = string(ins.Forecast.Categories[i])
		}
		table.Append([]string{label, money.FormatInt(int64(amount))})
	}
	table.Render()

	fmt.Fprintln(w, "\nSpending by category")
	breakdown := tablewriter.NewWriter(w)
	breakdown.SetHeader([]string{"Category", "Total"})
	for i, label := range ins.CategoryBreakdown.Labels {
		breakdown.Append([]string{string(label), money.FormatInt(ins.CategoryBreakdown.Amounts[i])})
	}
	breakdown.Render()
	return nil
}

func printSimulation(ctx context.Context, w io.Writer, engine *app.Engine, userID string, iv forecast.Intervention) error {
	sim, err := engine.Simulate(ctx, userID, iv)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nCut %s by %.0f%%\n", iv.Category, iv.ReductionPercent)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Current", "After"})
	table.Append([]string{"Expenses", money.FormatVND(sim.CurrentExpenses), money.FormatVND(sim.NewExpenses)})
	table.Append([]string{"Savings", money.FormatVND(sim.CurrentSavings), money.FormatVND(sim.NewSavings)})
	table.Render()
	fmt.Fprintln(w, sim.Summary)
	return nil
}

func printRecommendations(ctx context.Context, w io.Writer, engine *app.Engine, userID string, goals []model.Goal) error {
	recs, err := engine.Recommend(ctx, userID, goals)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nRecommendations")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Action", "Expected impact", "Reason"})
	for _, r := range recs {
		table.Append([]string{r.Action, r.ExpectedImpact, r.Reason})
	}
	table.Render()
	return nil
}

func parseGoals(raw string) []model.Goal {
	var goals []model.Goal
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, model.Goal(g))
		}
	}
	return goals
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
