package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"menu-costing/catalog"
	"menu-costing/decomposition"
	"menu-costing/fifo"
	"menu-costing/models"
	"menu-costing/service"
	"menu-costing/utils"
)

// saleInput selects the sale lines either from flags or from a sale file
type saleInput struct {
	salePath string
	item     string
	variant  string
	qty      int
}

func (in *saleInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.salePath, "sale", "", "YAML sale file (overrides --item/--variant/--qty)")
	cmd.Flags().StringVar(&in.item, "item", "", "Menu item id")
	cmd.Flags().StringVar(&in.variant, "variant", "", "Variant id")
	cmd.Flags().IntVar(&in.qty, "qty", 1, "Quantity sold")
}

func (in *saleInput) load() (*saleFile, error) {
	if in.salePath != "" {
		return loadSale(in.salePath)
	}
	if in.item == "" || in.variant == "" {
		return nil, fmt.Errorf("either --sale or both --item and --variant are required")
	}
	return &saleFile{Lines: []models.MenuItemInput{{
		MenuItemID: in.item,
		VariantID:  in.variant,
		Quantity:   in.qty,
	}}}, nil
}

func newEngine(opts *cliOptions) (*decomposition.Engine, error) {
	snapshot, err := catalog.LoadYAML(opts.catalogPath)
	if err != nil {
		return nil, err
	}
	return decomposition.NewEngine(snapshot)
}

func decomposeCmd(opts *cliOptions) *cobra.Command {
	var (
		input      saleInput
		strategy   string
		noYield    bool
		noPortions bool
		paths      bool
	)

	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "List the products and preparations a sale consumes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strategy != models.PreparationKeep && strategy != models.PreparationDecompose {
				return fmt.Errorf("--strategy must be keep or decompose, got %q", strategy)
			}
			sale, err := input.load()
			if err != nil {
				return err
			}
			engine, err := newEngine(opts)
			if err != nil {
				return err
			}

			traversal := models.TraversalOptions{
				ApplyYield:          !noYield,
				ConvertPortions:     !noPortions,
				IncludePath:         paths,
				PreparationStrategy: strategy,
			}

			results := make([]*models.TraversalResult, 0, len(sale.Lines))
			for _, line := range sale.Lines {
				result, err := engine.Traverse(line, traversal)
				if err != nil {
					return err
				}
				results = append(results, result)
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, results)
			}
			for _, result := range results {
				printTraversal(out, result, paths)
			}
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&strategy, "strategy", models.PreparationKeep, "Preparation strategy: keep or decompose")
	cmd.Flags().BoolVar(&noYield, "no-yield", false, "Skip yield gross-up")
	cmd.Flags().BoolVar(&noPortions, "no-portions", false, "Skip portion to weight conversion")
	cmd.Flags().BoolVar(&paths, "paths", false, "Show the composition path of each node")
	return cmd
}

func writeOffCmd(opts *cliOptions) *cobra.Command {
	var (
		input       saleInput
		consolidate bool
	)

	cmd := &cobra.Command{
		Use:   "writeoff",
		Short: "Build inventory write-offs valued at catalog base cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			sale, err := input.load()
			if err != nil {
				return err
			}
			engine, err := newEngine(opts)
			if err != nil {
				return err
			}

			adapter := service.NewWriteOffAdapter(consolidate)
			writeOffs := make([]*models.WriteOffResult, 0, len(sale.Lines))
			total := decimal.Zero
			for _, line := range sale.Lines {
				result, err := engine.Traverse(line, models.DefaultWriteOffOptions())
				if err != nil {
					return err
				}
				writeOff := adapter.Transform(result)
				writeOffs = append(writeOffs, writeOff)
				total = total.Add(writeOff.TotalBaseCost)
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, writeOffs)
			}
			for _, writeOff := range writeOffs {
				printWriteOff(out, writeOff)
			}
			fmt.Fprintf(out, "Total base cost: %s\n", utils.FormatMoney(total))
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().BoolVar(&consolidate, "consolidate", false, "Re-merge lines by product, preparation and unit")
	return cmd
}

func costCmd(opts *cliOptions) *cobra.Command {
	var (
		input     saleInput
		lotsPath  string
		warehouse string
		dept      string
		fallback  bool
		prepCost  string
	)

	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Compute FIFO cost of goods sold from opening lot balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if lotsPath == "" {
				return fmt.Errorf("--lots is required")
			}
			sale, err := input.load()
			if err != nil {
				return err
			}
			engine, err := newEngine(opts)
			if err != nil {
				return err
			}
			store, err := loadLots(lotsPath)
			if err != nil {
				return err
			}

			config := service.CostAdapterConfig{UseCatalogFallback: fallback}
			if prepCost != "" {
				cost, err := decimal.NewFromString(prepCost)
				if err != nil {
					return fmt.Errorf("invalid --prep-cost %q: %w", prepCost, err)
				}
				config.DefaultPreparationCost = &cost
			}

			scope := models.LotScope{WarehouseID: sale.WarehouseID, DepartmentID: sale.DepartmentID}
			if warehouse != "" {
				scope.WarehouseID = warehouse
			}
			if dept != "" {
				scope.DepartmentID = dept
			}
			if scope.WarehouseID == "" {
				return service.ErrMissingWarehouse
			}

			session := fifo.NewAllocator(store).NewSession()
			defer session.Close()

			adapter := service.NewCostAdapter(config)
			response := &models.SaleCostResponse{Reference: sale.Reference, TotalCost: decimal.Zero}
			for _, line := range sale.Lines {
				result, err := engine.Traverse(line, models.DefaultCostOptions())
				if err != nil {
					return err
				}
				breakdown, err := adapter.Transform(cmd.Context(), session, result, scope)
				if err != nil {
					return err
				}
				response.Costs = append(response.Costs, *breakdown)
				response.TotalCost = response.TotalCost.Add(breakdown.TotalCost)
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, response)
			}
			for i := range response.Costs {
				printCost(out, &response.Costs[i])
			}
			fmt.Fprintf(out, "Total cost: %s\n", utils.FormatMoney(response.TotalCost))
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&lotsPath, "lots", "", "YAML file with opening lot balances")
	cmd.Flags().StringVar(&warehouse, "warehouse", envOr("DEFAULT_WAREHOUSE_ID", ""), "Warehouse to draw lots from")
	cmd.Flags().StringVar(&dept, "department", envOr("DEFAULT_DEPARTMENT_ID", ""), "Department to draw lots from")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "Price shortfall at catalog base cost")
	cmd.Flags().StringVar(&prepCost, "prep-cost", "", "Price preparation shortfall at this cost per unit")
	return cmd
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTraversal(out io.Writer, result *models.TraversalResult, paths bool) {
	meta := result.Metadata
	fmt.Fprintf(out, "%s (%s) x%d: %d modifiers, %d replacements\n",
		meta.MenuItemName, meta.VariantName, meta.Quantity, meta.ModifiersApplied, meta.ReplacementsApplied)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, node := range result.Nodes {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%.3f\t%s", node.Kind, node.EntityID, node.Name, node.Quantity, node.Unit)
		if paths {
			fmt.Fprintf(tw, "\t%s", strings.Join(node.Path, " > "))
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
}

func printWriteOff(out io.Writer, writeOff *models.WriteOffResult) {
	fmt.Fprintf(out, "%s (%s) x%d: %d products, %d preparations\n",
		writeOff.MenuItemName, writeOff.VariantName, writeOff.Quantity, writeOff.TotalProducts, writeOff.TotalPreparations)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, item := range writeOff.Items {
		fmt.Fprintf(tw, "  %s\t%s\t%.3f\t%s\t%s\n",
			item.Kind, item.Name, item.Quantity, item.Unit, utils.FormatMoney(item.TotalCost))
	}
	tw.Flush()
}

func printCost(out io.Writer, breakdown *models.ActualCostBreakdown) {
	fmt.Fprintf(out, "%s (%s) x%d @ %s/%s\n",
		breakdown.MenuItemName, breakdown.VariantName, breakdown.Quantity,
		breakdown.Scope.WarehouseID, breakdown.Scope.DepartmentID)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, line := range breakdown.Lines {
		fmt.Fprintf(tw, "  %s\t%s\t%.3f\t%s\t%s", line.Kind, line.Name, line.Quantity, line.Unit, utils.FormatMoney(line.LineCost))
		if line.UnallocatedQuantity > 0 {
			fmt.Fprintf(tw, "\tshort %.3f %s", line.UnallocatedQuantity, line.LotUnit)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()

	if breakdown.HasShortfall {
		fmt.Fprintf(out, "  warning: lots did not cover this sale line\n")
	}
}
