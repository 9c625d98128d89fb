package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"feirabairro/internal/console"
)

var (
	// ErrFileNotFound marks a descriptor whose file is absent. It is fatal
	// whether or not the descriptor is required.
	ErrFileNotFound = errors.New("migration file not found")
	// ErrConnect marks a failed readiness check.
	ErrConnect = errors.New("failed to establish database connection")
)

// Descriptor is one SQL file of the fixed migration list.
type Descriptor struct {
	Path             string
	Name             string
	Required         bool
	SkipIfSchemaOnly bool
}

// DefaultFiles is the ordered list of SQL files the runner executes. Paths are
// relative to the program's install directory.
func DefaultFiles() []Descriptor {
	return []Descriptor{
		{Path: "../database/01-schema.sql", Name: "Schema", Required: true},
		{Path: "../database/02-seed-data.sql", Name: "Seed Data", SkipIfSchemaOnly: true},
	}
}

// Outcome is what happened to one descriptor.
type Outcome string

const (
	OutcomeExecuted       Outcome = "executed"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeEmpty          Outcome = "empty"
	OutcomeAlreadyApplied Outcome = "already-applied"
	OutcomeFailedOptional Outcome = "failed-optional"
	OutcomeFailedFatal    Outcome = "failed-fatal"
)

// FileOutcome records the outcome of a descriptor.
type FileOutcome struct {
	Descriptor Descriptor
	Path       string
	Outcome    Outcome
	Err        error
}

// Status is the overall result of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result summarises a run.
type Result struct {
	RunID    uuid.UUID
	Status   Status
	Version  string
	Outcomes []FileOutcome
	Tables   []string
	Err      error
}

// ExitCode maps the result to a process exit status.
func (r Result) ExitCode() int {
	if r.Status == StatusSucceeded {
		return 0
	}
	return 1
}

func (r Result) fail(err error) Result {
	r.Status = StatusFailed
	r.Err = err
	return r
}

// DefaultConnectTimeout bounds the readiness check when Options leaves
// ConnectTimeout unset.
const DefaultConnectTimeout = 30 * time.Second

// Options controls a single run.
type Options struct {
	SchemaOnly     bool
	BaseDir        string
	ConnectTimeout time.Duration
	Files          []Descriptor
}

// Runner executes SQL files sequentially over one database connection.
type Runner struct {
	db      *sql.DB
	dialect Dialect
	out     console.Logger
	logger  *slog.Logger
}

// NewRunner creates a Runner. The caller owns db and closes it.
func NewRunner(db *sql.DB, dialect Dialect, out console.Logger, logger *slog.Logger) *Runner {
	return &Runner{db: db, dialect: dialect, out: out, logger: logger}
}

// Run checks the connection, executes every descriptor in order and lists
// the resulting tables. It never exits the process.
func (r *Runner) Run(ctx context.Context, opts Options) Result {
	res := Result{RunID: uuid.New()}
	logger := r.logger.With(
		slog.String("run_id", res.RunID.String()),
		slog.String("driver", r.dialect.Name()),
	)

	r.out.Info("Connecting to database...")
	version, err := r.checkConnection(ctx, opts.ConnectTimeout)
	if err != nil {
		r.out.Error("Database connection failed: " + err.Error())
		return res.fail(fmt.Errorf("%w: %w", ErrConnect, err))
	}
	res.Version = version
	r.out.Success("Database connection established")
	r.out.Info("Database version: " + strings.Split(version, ",")[0])
	r.out.Plain("")

	r.out.Plain("Running migrations...")
	r.out.Plain("")
	for _, file := range opts.Files {
		outcome := r.runFile(ctx, logger, opts, file)
		res.Outcomes = append(res.Outcomes, outcome)
		if outcome.Outcome == OutcomeFailedFatal {
			return res.fail(outcome.Err)
		}
	}

	r.out.Plain("")
	r.out.Banner("")
	r.out.Success("All migrations completed successfully!")
	r.out.Banner("")
	r.out.Plain("")

	tables, err := r.verify(ctx)
	if err != nil {
		return res.fail(err)
	}
	res.Tables = tables
	res.Status = StatusSucceeded
	logger.Debug("migration run finished", slog.Int("files", len(res.Outcomes)), slog.Int("tables", len(tables)))
	return res
}

// checkConnection is always bounded: drivers such as MySQL only time out
// the dial, not the handshake.
func (r *Runner) checkConnection(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return "", fmt.Errorf("ping db: %w", err)
	}

	var version string
	if err := r.db.QueryRowContext(ctx, r.dialect.VersionQuery()).Scan(&version); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

func (r *Runner) runFile(ctx context.Context, logger *slog.Logger, opts Options, file Descriptor) FileOutcome {
	result := FileOutcome{Descriptor: file}

	if opts.SchemaOnly && file.SkipIfSchemaOnly {
		r.out.Info(fmt.Sprintf("Skipping: %s (schema-only mode)", file.Name))
		result.Outcome = OutcomeSkipped
		return result
	}

	result.Path = resolvePath(opts.BaseDir, file.Path)
	outcome, err := r.executeFile(ctx, logger, result.Path, file.Name)
	result.Outcome, result.Err = outcome, err
	switch {
	case err == nil:
	case errors.Is(err, ErrFileNotFound), file.Required:
		result.Outcome = OutcomeFailedFatal
	default:
		r.out.Warning(fmt.Sprintf("%s failed but is optional, continuing...", file.Name))
		result.Outcome = OutcomeFailedOptional
	}

	logger.Debug("migration file processed",
		slog.String("file", file.Name),
		slog.String("path", result.Path),
		slog.String("outcome", string(result.Outcome)),
	)
	return result
}

// executeFile sends the whole file in one round trip. Splitting into
// statements is left to the server.
func (r *Runner) executeFile(ctx context.Context, logger *slog.Logger, path, name string) (Outcome, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.out.Error("File not found: " + path)
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
		}
		r.out.Error(fmt.Sprintf("Cannot read %s: %v", path, err))
		return "", fmt.Errorf("read migration %s: %w", name, err)
	}

	if strings.TrimSpace(string(content)) == "" {
		r.out.Warning("File is empty: " + name)
		return OutcomeEmpty, nil
	}

	r.out.Info(fmt.Sprintf("Executing: %s (%s)", name, humanize.Bytes(uint64(len(content)))))
	started := time.Now()
	_, err = r.db.ExecContext(ctx, string(content))
	logger.Debug("migration file executed",
		slog.String("file", name),
		slog.Duration("took", time.Since(started)),
		slog.Bool("error", err != nil),
	)
	if err == nil {
		r.out.Success(name + " executed successfully")
		return OutcomeExecuted, nil
	}
	if r.dialect.IsAlreadyExists(err) {
		r.out.Warning(name + ": Some objects already exist (this is normal for re-runs)")
		return OutcomeAlreadyApplied, nil
	}

	r.out.Error(fmt.Sprintf("%s failed: %v", name, err))
	return "", fmt.Errorf("execute migration %s: %w", name, err)
}

func (r *Runner) verify(ctx context.Context) ([]string, error) {
	r.out.Info("Verifying database structure...")

	rows, err := r.db.QueryContext(ctx, r.dialect.TablesQuery())
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(tables) == 0 {
		r.out.Warning("No tables found in database")
		return tables, nil
	}
	r.out.Success(fmt.Sprintf("Found %d tables:", len(tables)))
	for _, name := range tables {
		r.out.Plain("  - " + name)
	}
	return tables, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	resolved := filepath.Join(baseDir, path)
	if abs, err := filepath.Abs(resolved); err == nil {
		return abs
	}
	return resolved
}
