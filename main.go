package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath    string
	catalogSource string
	verbose       bool

	cfg *Config
)

var rootCmd = &cobra.Command{
	Use:   "grocery-checkout",
	Short: "Pick quantities from a product catalog and export the order as a PDF",
	Long: `grocery-checkout loads a catalog of products grouped by category, keeps the
quantities you ask for, and exports the selected items with their totals as a
paginated PDF check list.

Run without arguments to start the interactive shop.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		if catalogSource != "" {
			cfg.Catalog.Source = catalogSource
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		l, err := newLogger(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runShop,
}

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "Start the interactive shop",
	RunE:  runShop,
}

var (
	orderQuantities []string
	orderTitle      string
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Check out the given quantities and export the PDF in one go",
	Example: `  grocery-checkout order --qty "Sparklers:0=3" --qty "Flower Pots:2=1" --title Diwali`,
	RunE: runOrder,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or copy the product catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog grouped by category",
	RunE:  runCatalogShow,
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report products with suspicious prices",
	RunE:  runCatalogCheck,
}

var importTarget string

var catalogImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the catalog into a SQL store (mysql://DSN or sqlite://PATH)",
	RunE:  runCatalogImport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config file")
	rootCmd.PersistentFlags().StringVar(&catalogSource, "catalog", "", "catalog source: JSON file, http(s) URL, mysql://DSN or sqlite://PATH")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	orderCmd.Flags().StringArrayVar(&orderQuantities, "qty", nil, "quantity as GROUP:INDEX=QTY, index counted from 0 (repeatable)")
	orderCmd.Flags().StringVar(&orderTitle, "title", "", "receipt title, also used for the file name; empty cancels the export")

	catalogImportCmd.Flags().StringVar(&importTarget, "to", "", "target store (mysql://DSN or sqlite://PATH)")
	_ = catalogImportCmd.MarkFlagRequired("to")

	catalogCmd.AddCommand(catalogShowCmd, catalogCheckCmd, catalogImportCmd)
	rootCmd.AddCommand(shopCmd, orderCmd, catalogCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadSession(ctx context.Context) (*Session, error) {
	catalog, err := LoadCatalog(ctx, cfg.Catalog.Source)
	if err != nil {
		logger.Error("failed to load catalog", zap.String("source", cfg.Catalog.Source), zap.Error(err))
		return nil, err
	}
	logger.Debug("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("groups", len(catalog.Groups)),
		zap.Int("products", catalog.Len()))
	return NewSession(catalog), nil
}

func runShop(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}
	p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	return newShop(s, cfg.ReceiptOptions(), p).run()
}

func runOrder(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd.Context())
	if err != nil {
		return err
	}
	for _, q := range orderQuantities {
		key, input, err := parseQuantityFlag(q)
		if err != nil {
			return err
		}
		if err := s.SetInput(key, input); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	order, err := Aggregate(s)
	if errors.Is(err, ErrEmptySelection) {
		fmt.Fprintln(out, "Please select at least one product!")
		return nil
	}
	if err != nil {
		return err
	}

	res, err := ExportReceipt(order, orderTitle, cfg.ReceiptOptions())
	if err != nil {
		logger.Error("receipt export failed", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}
	switch res.Status {
	case ExportCompleted:
		fmt.Fprintf(out, "Total: %s\nSaved %s\n", order.Total.Format(cfg.Receipt.Currency), res.Path)
	case ExportAborted:
		fmt.Fprintln(out, "Export cancelled.")
	}
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	catalog, err := LoadCatalog(cmd.Context(), cfg.Catalog.Source)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, g := range catalog.Groups {
		fmt.Fprintf(out, "%s\n", g.Name)
		for i, p := range g.Products {
			fmt.Fprintf(out, "  %d: [%s] %s  %s -> %s\n", i, p.Code, p.Name,
				p.ListRate.Format(cfg.Receipt.Currency), p.FinalRate.Format(cfg.Receipt.Currency))
		}
	}
	return nil
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	catalog, err := LoadCatalog(cmd.Context(), cfg.Catalog.Source)
	if err != nil {
		return err
	}

	anomalies := FindPriceAnomalies(catalog)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d anomalies.\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Fprintf(out, "%s:%d [%s] %s: %s\n", a.Key.Group, a.Key.Index, a.Product.Code, a.Product.Name, a.Reason)
	}
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	catalog, err := LoadCatalog(cmd.Context(), cfg.Catalog.Source)
	if err != nil {
		return err
	}

	store, err := OpenStore(importTarget)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportCatalog(cmd.Context(), catalog); err != nil {
		logger.Error("catalog import failed", zap.Error(err))
		return err
	}
	logger.Info("catalog imported",
		zap.Int("groups", len(catalog.Groups)),
		zap.Int("products", catalog.Len()))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products in %d groups.\n", catalog.Len(), len(catalog.Groups))
	return nil
}
