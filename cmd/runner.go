package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tonearm/tonearm/internal/importer"
	"github.com/tonearm/tonearm/internal/repositories"
	"github.com/tonearm/tonearm/internal/services"
	"github.com/tonearm/tonearm/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer

	db *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, importCommand, validateCommand, jobsCommand, exportCommand, libraryCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// openDatabase opens the configured SQLite database once per invocation,
// running any pending migrations.
func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// searchers builds the searcher set: the local library always, the external
// catalog only when credentials are configured.
func (r *Runner) searchers(db *sql.DB) []services.Searcher {
	library := services.NewLibrarySearcher(repositories.NewLibraryTrackRepository(db), r.config.Import.MaxMatchesPerSong)
	searchers := []services.Searcher{library}

	if r.config.Catalog.ClientID != "" {
		searchers = append(searchers, services.NewCatalogSearcher(r.config.Catalog, r.config.Import.MaxMatchesPerSong))
	}

	return searchers
}

// engine wires an import engine over the given database connection.
func (r *Runner) engine(db *sql.DB) *importer.Engine {
	return importer.NewEngine(importer.Config{
		Jobs:               repositories.NewImportJobRepository(db),
		Playlists:          repositories.NewPlaylistRepository(db),
		Searchers:          r.searchers(db),
		Logger:             r.logger,
		CheckpointSongs:    r.config.Import.CheckpointSongs,
		CheckpointInterval: time.Duration(r.config.Import.CheckpointSeconds) * time.Second,
		SearchesPerSecond:  r.config.Import.SearchesPerSecond,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
