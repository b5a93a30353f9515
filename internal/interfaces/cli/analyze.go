package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	analyticsapp "github.com/kitchenops/backend/internal/application/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify dishes from a JSON export",
		Example: `  kitchenctl analyze --data export.json --start 2024-01-01 --end 2024-01-31
  kitchenctl analyze --data export.json --start 2024-01-01 --end 2024-01-31 --outlet o1 --format json`,
	}
	cmd.Flags().String("data", "", "path to the JSON export {sales, menus, recipes}")
	cmd.Flags().String("start", "", "first day of the period (YYYY-MM-DD or ISO-8601)")
	cmd.Flags().String("end", "", "last day of the period, inclusive")
	cmd.Flags().String("outlet", "", "restrict to one outlet")
	cmd.Flags().String("format", formatTable, "output format: table or json")
	v := bindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		format := strings.ToLower(v.GetString("format"))
		if format != formatTable && format != formatJSON {
			return fmt.Errorf("unknown format %q (want table or json)", format)
		}
		path := v.GetString("data")
		if path == "" {
			return fmt.Errorf("--data is required")
		}

		export, err := persistence.LoadCatalogExportFile(path)
		if err != nil {
			return err
		}

		svc := analyticsapp.NewMenuAnalyticsService(persistence.NewMemoryCatalog(export), nil, nil, nil,
			analyticsapp.ServiceConfig{})
		rows, err := svc.GetMenuEngineering(cmd.Context(), analyticsapp.MenuEngineeringQuery{
			StartDate: v.GetString("start"),
			EndDate:   v.GetString("end"),
			OutletID:  v.GetString("outlet"),
		})
		if err != nil {
			return err
		}

		if format == formatJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		return writeTable(cmd.OutOrStdout(), rows)
	}
	return cmd
}

func writeTable(out io.Writer, rows []analyticsapp.DishAnalyticsResponse) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No dishes sold in this period.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "RECIPE\tNAME\tORDERS\tREVENUE\tPROFIT\tAVG PROFIT\tPOP\tPROF\tCLASS\tLAST ORDERED\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\t\n",
			r.RecipeID, r.RecipeName, r.TotalOrders, r.TotalRevenue, r.TotalProfit,
			r.AvgProfitPerServing, r.PopularityScore, r.ProfitabilityScore,
			r.Classification, r.LastOrdered)
	}
	return w.Flush()
}
