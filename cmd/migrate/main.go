package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"feirabairro/internal/config"
	"feirabairro/internal/console"
	"feirabairro/internal/logging"
	"feirabairro/internal/storage"
)

var troubleshootingTips = []string{
	"  1. Verify database credentials are correct",
	"  2. Ensure database server is accessible",
	"  3. Check if database exists",
	"  4. Verify SQL files are present in database/ directory",
	"  5. Check database logs for more details",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var schemaOnly bool
	code := 0

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the feira_bairro schema and seed data",
		Long: `migrate runs database/01-schema.sql and database/02-seed-data.sql, in that
order, against the database described by the DB_* environment variables.
Objects that already exist are reported as warnings so the command can be re-run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code = migrate(cmd.Context(), schemaOnly, console.New(stdout), stderr)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	// cobra reads os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "skip seed data and apply only the schema")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return code
}

func migrate(ctx context.Context, schemaOnly bool, out console.Logger, stderr io.Writer) int {
	out.Plain("")
	out.Banner("Database Migration Script")
	out.Plain("")

	cfg, err := config.Load()
	if err != nil {
		return failed(out, stderr, fmt.Errorf("load config: %w", err))
	}
	logger := logging.NewLogger(stderr, cfg.LogLevel)

	out.Info("Configuration:")
	for _, line := range cfg.Redacted() {
		out.Plain("  " + line)
	}
	out.Plain("")
	if schemaOnly {
		out.Info("Running in schema-only mode (skipping seed data)")
		out.Plain("")
	}

	dialect, err := storage.DialectFor(cfg.Driver)
	if err != nil {
		return failed(out, stderr, err)
	}
	db, err := dialect.Open(cfg)
	if err != nil {
		return failed(out, stderr, fmt.Errorf("open db: %w", err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("close db", slog.String("error", err.Error()))
		}
	}()

	runner := storage.NewRunner(db, dialect, out, logger)
	res := runner.Run(ctx, storage.Options{
		SchemaOnly:     schemaOnly,
		BaseDir:        cfg.BaseDir,
		ConnectTimeout: cfg.ConnectTimeout,
		Files:          storage.DefaultFiles(),
	})
	if res.Err != nil {
		return failed(out, stderr, res.Err)
	}
	out.Plain("")
	return res.ExitCode()
}

// failed prints the failure block. Error details go to stderr.
func failed(out console.Logger, stderr io.Writer, err error) int {
	out.Plain("")
	out.Banner("")
	out.Error("Migration failed!")
	out.Banner("")
	out.Plain("")
	fmt.Fprintln(stderr, "Error details:")
	fmt.Fprintln(stderr, err.Error())
	out.Plain("")
	out.Info("Troubleshooting tips:")
	for _, tip := range troubleshootingTips {
		out.Plain(tip)
	}
	out.Plain("")
	return 1
}
