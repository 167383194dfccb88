package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/anirec/internal/models"
	"github.com/desertthunder/anirec/internal/reconciler"
	"github.com/desertthunder/anirec/internal/repositories"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
	"github.com/desertthunder/anirec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// catalog is the part of the backend that bypasses the reconciler.
type catalog interface {
	Home(ctx context.Context) (any, error)
	List(ctx context.Context, limit int) ([]models.Anime, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	api         *services.APIService
	backend     reconciler.Backend
	credentials reconciler.TokenStore
	history     *repositories.SearchHistoryRepository
	rec         *reconciler.Reconciler
	engine      *tasks.Engine
	logger      *log.Logger
	output      io.Writer
	input       *bufio.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	API         *services.APIService
	Backend     reconciler.Backend
	Credentials reconciler.TokenStore
	History     *repositories.SearchHistoryRepository
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
}

// NewRunner creates a new Runner with the provided configuration.
//
// Backend defaults to an [services.AnimeService] over API.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Backend.BaseURL, nil)
	}
	if opts.Backend == nil {
		opts.Backend = services.NewAnimeService(opts.API)
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		api:         opts.API,
		backend:     opts.Backend,
		credentials: opts.Credentials,
		history:     opts.History,
		logger:      opts.Logger,
		output:      opts.Output,
		input:       bufio.NewReader(opts.Input),
	}
	r.rec = r.newReconciler(opts.Logger, nil)
	r.engine = tasks.NewEngine(opts.Backend, opts.API)
	return r
}

// SetLogger replaces the logger used by the runner, its API client and its reconciler.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.api.SetLogger(logger)
	r.rec = r.newReconciler(logger, nil)
}

func (r *Runner) catalogService() (catalog, error) {
	c, ok := r.backend.(catalog)
	if !ok {
		return nil, fmt.Errorf("%w: backend does not serve catalog listings", shared.ErrServiceUnavailable)
	}
	return c, nil
}

func (r *Runner) newReconciler(logger *log.Logger, events chan<- reconciler.Event) *reconciler.Reconciler {
	opts := reconciler.Options{Logger: logger, Events: events}
	if r.history != nil {
		opts.History = r.history
	}
	return reconciler.New(r.backend, r.credentials, opts)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, animeCommand, userCommand, favoritesCommand, recommendationsCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession restores the stored session or fails with [shared.ErrNotAuthenticated].
func (r *Runner) requireSession(ctx context.Context) error {
	if !r.rec.Restore(ctx) {
		return fmt.Errorf("%w: run 'anirec user login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) storedToken() (string, error) {
	if r.credentials == nil {
		return "", fmt.Errorf("%w: credential store not initialized", shared.ErrServiceUnavailable)
	}
	return r.credentials.Token()
}

// prompt reads one line from input after printing label. Used for secrets not passed as flags.
func (r *Runner) prompt(label string) (string, error) {
	r.writePlain("%s: ", label)
	line, err := r.input.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writeAnimeList prints items as a numbered list, or as JSON when asJSON is set.
func (r *Runner) writeAnimeList(title string, items []models.Anime, asJSON bool) error {
	if asJSON {
		return r.writeJSON(items, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(items)))
	if len(items) == 0 {
		return r.writePlain("No titles.\n")
	}
	for i, a := range items {
		r.writePlain("%3d. %s\n", i+1, animeLine(a))
	}
	return nil
}

// drainProgress prints updates until progress is closed, then closes the returned channel.
func (r *Runner) drainProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Debug("progress", "phase", u.Phase, "step", u.Step, "total", u.Total)
			r.writePlain("%s\n", u.Message)
		}
	}()
	return done
}

func animeLine(a models.Anime) string {
	var b strings.Builder
	b.WriteString(a.Title)
	if a.Score > 0 {
		fmt.Fprintf(&b, " [%.2f]", a.Score)
	}
	if id := a.ID(); id != 0 {
		fmt.Fprintf(&b, " (id %d)", id)
	}
	if genres := a.GenreLine(); genres != "" {
		b.WriteString(" - " + genres)
	}
	return b.String()
}
