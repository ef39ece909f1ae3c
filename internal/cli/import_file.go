package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/services"
)

// ImportFileCommand imports a CSV or JSON catalog file into the local database.
type ImportFileCommand struct {
	FilePath     string
	Format       string
	DatabasePath string
	AuditDir     string
	Strict       bool
	Verbose      bool
	DryRun       bool
}

func NewImportFileCommand() *ImportFileCommand {
	return &ImportFileCommand{}
}

func (cmd *ImportFileCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-file", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a CSV or JSON catalog file (required)")
	fs.StringVar(&cmd.Format, "format", "", "File format: csv or json (default: from file extension)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database")
	fs.StringVar(&cmd.AuditDir, "audit-dir", "", "Directory to archive the raw file and failure reports")
	fs.BoolVar(&cmd.Strict, "strict", false, "Report values that could not be coerced")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-file -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a catalog export into the local database.\n\n")
		fmt.Fprintf(os.Stderr, "CSV files need a header row. JSON files hold an array of objects\n")
		fmt.Fprintf(os.Stderr, "or a single object.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-file -file catalog.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-file -file export.txt -format json -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	format, err := detectFormat(cmd.FilePath, cmd.Format)
	if err != nil {
		return err
	}
	cmd.Format = format

	return nil
}

func detectFormat(path, explicit string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(explicit))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "csv", "json":
		return format, nil
	case "":
		return "", fmt.Errorf("cannot detect format of %s, pass -format csv|json", path)
	default:
		return "", fmt.Errorf("unsupported format %q (expected csv or json)", format)
	}
}

func (cmd *ImportFileCommand) Run() error {
	fmt.Println("Catalog File Import")
	fmt.Println("===================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	content, err := os.ReadFile(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.FilePath, err)
	}
	fmt.Printf("File: %s (%s, %d bytes)\n", cmd.FilePath, cmd.Format, len(content))
	fmt.Printf("Database: %s\n", cmd.DatabasePath)

	env, err := openImportEnv(config.NewConfig(), cmd.DatabasePath, cmd.AuditDir)
	if err != nil {
		return err
	}
	defer env.Close()

	opts := services.ImportOptions{
		DryRun: cmd.DryRun,
		Label:  filepath.Base(cmd.FilePath),
	}
	if cmd.Strict {
		opts.Strict = &cmd.Strict
	}

	run := env.importer.ImportCSV
	if cmd.Format == "json" {
		run = env.importer.ImportJSON
	}

	outcome, err := run(context.Background(), content, opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	printOutcome(outcome, cmd.Verbose)
	env.printCatalogSize()

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}
	fmt.Println("\nImport complete!")
	return nil
}
