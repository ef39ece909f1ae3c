package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/services"
	"github.com/mrlokans/storefront/internal/woocommerce"
)

// ImportWooCommerceCommand pulls every product of a WooCommerce store into
// the local database.
type ImportWooCommerceCommand struct {
	URL            string
	ConsumerKey    string
	ConsumerSecret string
	DatabasePath   string
	AuditDir       string
	Strict         bool
	Verbose        bool
	DryRun         bool

	cfg *config.Config
}

func NewImportWooCommerceCommand() *ImportWooCommerceCommand {
	return &ImportWooCommerceCommand{cfg: config.NewConfig()}
}

func (cmd *ImportWooCommerceCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-woocommerce", flag.ExitOnError)

	fs.StringVar(&cmd.URL, "url", cmd.cfg.WooCommerce.URL, "Store base URL (env: WOOCOMMERCE_URL)")
	fs.StringVar(&cmd.ConsumerKey, "key", cmd.cfg.WooCommerce.ConsumerKey, "REST API consumer key (env: WOOCOMMERCE_CONSUMER_KEY)")
	fs.StringVar(&cmd.ConsumerSecret, "secret", cmd.cfg.WooCommerce.ConsumerSecret, "REST API consumer secret (env: WOOCOMMERCE_CONSUMER_SECRET)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the catalog database")
	fs.StringVar(&cmd.AuditDir, "audit-dir", "", "Directory to archive failure reports")
	fs.BoolVar(&cmd.Strict, "strict", false, "Report values that could not be coerced")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Fetch and resolve products without saving them")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-woocommerce [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import all products of a WooCommerce store, %d per page.\n\n", woocommerce.PageSize)
		fmt.Fprintf(os.Stderr, "Credentials default to the WOOCOMMERCE_* environment variables.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-woocommerce -url https://shop.example -key ck_xxx -secret cs_xxx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-woocommerce -dry-run -strict\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	return cmd.credentials().Validate()
}

func (cmd *ImportWooCommerceCommand) credentials() woocommerce.Credentials {
	return woocommerce.Credentials{
		BaseURL:        cmd.URL,
		ConsumerKey:    cmd.ConsumerKey,
		ConsumerSecret: cmd.ConsumerSecret,
	}
}

func (cmd *ImportWooCommerceCommand) Run() error {
	fmt.Println("WooCommerce Import")
	fmt.Println("==================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	fmt.Printf("Store: %s\n", cmd.URL)
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	env, err := openImportEnv(cmd.cfg, cmd.DatabasePath, cmd.AuditDir)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := services.ImportOptions{DryRun: cmd.DryRun}
	if cmd.Strict {
		opts.Strict = &cmd.Strict
	}

	fmt.Println("\nFetching products...")
	outcome, err := env.importer.ImportWooCommerce(ctx, cmd.credentials(), opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printOutcome(outcome, cmd.Verbose)
	env.printCatalogSize()
	fmt.Println("\nImport complete!")
	return nil
}
