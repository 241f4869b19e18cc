package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	serveradapter "github.com/evanschultz/kanboard/internal/adapters/server"
	servercommon "github.com/evanschultz/kanboard/internal/adapters/server/common"
	"github.com/evanschultz/kanboard/internal/adapters/storage/jsonfile"
	"github.com/evanschultz/kanboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/kanboard/internal/app"
	"github.com/evanschultz/kanboard/internal/config"
	"github.com/evanschultz/kanboard/internal/domain"
	"github.com/evanschultz/kanboard/internal/platform"
	"github.com/evanschultz/kanboard/internal/tui"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// fang already rendered the error.
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version), fang.WithoutManpage())
}

// rootOptions holds persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	stateDir   string
	appName    string
	devMode    bool
}

// newRootCmd constructs the kanboard command tree.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: platform.DefaultAppName}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("KANBOARD_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KANBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	cmd := &cobra.Command{
		Use:           "kanboard",
		Short:         "A local kanban board for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.stateDir, "state-dir", "", "directory for the file storage backend")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	cmd.AddCommand(
		newServeCmd(opts, stderr),
		newExportCmd(opts, stdout, stderr),
		newImportCmd(opts, stdout, stderr),
		newResetCmd(opts, stdout, stderr),
		newStatusCmd(opts, stdout, stderr),
		newPathsCmd(opts, stdout),
		newConfigCmd(opts, stdout),
	)
	return cmd
}

// newServeCmd builds `kanboard serve`.
func newServeCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over a local REST API and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "serve", stderr, func(ctx context.Context, s *session) error {
				serverCfg := serveradapter.Config{
					HTTPBind:      firstNonEmpty(httpBind, s.cfg.Server.HTTPBind),
					APIEndpoint:   firstNonEmpty(apiEndpoint, s.cfg.Server.APIEndpoint),
					MCPEndpoint:   firstNonEmpty(mcpEndpoint, s.cfg.Server.MCPEndpoint),
					ServerName:    opts.appName,
					ServerVersion: version,
				}
				s.logger.Info("serve configuration resolved", "http", serverCfg.HTTPBind, "api", serverCfg.APIEndpoint, "mcp", serverCfg.MCPEndpoint)
				return serveCommandRunner(ctx, serverCfg, serveradapter.Dependencies{
					Board: servercommon.NewAppServiceAdapter(s.svc),
					Ready: func(ctx context.Context) error {
						_, _, err := s.svc.SavedAt(ctx)
						return err
					},
					Middleware: requestLogger(s.logger),
					OnListen: func(addr net.Addr) {
						s.logger.Info("serve listening", "addr", addr.String())
					},
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "HTTP API base endpoint (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP streamable HTTP endpoint (default from config)")
	return cmd
}

// newExportCmd builds `kanboard export`.
func newExportCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "export", stderr, func(_ context.Context, s *session) error {
				return runExport(s.svc, outPath, stdout)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

// newImportCmd builds `kanboard import`.
func newImportCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the board with a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			return withSession(cmd.Context(), opts, "import", stderr, func(ctx context.Context, s *session) error {
				return runImport(ctx, s, inPath, stdout)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input board JSON file")
	return cmd
}

// newResetCmd builds `kanboard reset`.
func newResetCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Replace the board with the configured default columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "reset", stderr, func(ctx context.Context, s *session) error {
				board := domain.Board{Columns: boardColumns(s.cfg), Tasks: []domain.Task{}}
				if err := s.svc.Reset(ctx, board); err != nil {
					return fmt.Errorf("reset board: %w", err)
				}
				_, _ = fmt.Fprintf(stdout, "board reset: %d columns\n", len(board.Columns))
				return nil
			})
		},
	}
}

// newStatusCmd builds `kanboard status`.
func newStatusCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the stored board record summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), opts, "status", stderr, func(ctx context.Context, s *session) error {
				return runStatus(ctx, s, stdout)
			})
		},
	}
}

// newPathsCmd builds `kanboard paths`.
func newPathsCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data locations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", opts.resolveConfigPath(paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(stdout, "state_dir: %s\n", paths.StateDir)
			return nil
		},
	}
}

// newConfigCmd builds `kanboard config`.
func newConfigCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := opts.paths()
			if err != nil {
				return err
			}
			configPath := opts.resolveConfigPath(paths)
			if err := writeDefaultConfig(configPath, config.Default(paths.DBPath, paths.StateDir), force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "wrote %s\n", configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}

// paths resolves per-user locations for the selected app name and mode.
func (o *rootOptions) paths() (platform.Paths, error) {
	return platform.Resolve(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// resolveConfigPath applies flag, then env, then platform default.
func (o *rootOptions) resolveConfigPath(paths platform.Paths) string {
	if path := strings.TrimSpace(o.configPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("KANBOARD_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// session bundles the resources one command flow needs.
type session struct {
	cfg       config.Config
	logger    *runtimeLogger
	svc       *app.Service
	closeRepo func() error
	stderr    io.Writer
}

// openSession resolves configuration, logging, and storage, then loads the board.
func openSession(ctx context.Context, opts *rootOptions, command string, stderr io.Writer) (*session, error) {
	paths, err := opts.paths()
	if err != nil {
		return nil, err
	}
	configPath := opts.resolveConfigPath(paths)

	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("KANBOARD_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	stateDir := strings.TrimSpace(opts.stateDir)
	stateOverridden := stateDir != ""
	if !stateOverridden {
		stateDir = paths.StateDir
	}

	cfg, err := config.Load(configPath, config.Default(dbPath, stateDir))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Storage.Path = dbPath
	}
	if stateOverridden {
		cfg.Storage.StateDir = stateDir
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// The board owns the terminal; runtime logs go to the dev-file sink only.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath, "state_dir", stateDir)
	logger.Info("configuration loaded", "config_path", configPath, "backend", cfg.Storage.Backend, "key", cfg.Storage.Key, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	persister, closeRepo, err := openPersister(cfg, logger)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	store := app.NewStore(persister, uuid.NewString, app.StoreConfig{
		Key:            cfg.Storage.Key,
		DefaultColumns: boardColumns(cfg),
	})
	if err := store.Load(ctx); err != nil {
		logger.Error("board load failed", "key", cfg.Storage.Key, "err", err)
		s := &session{logger: logger, closeRepo: closeRepo, stderr: stderr}
		s.Close()
		return nil, fmt.Errorf("load board: %w", err)
	}
	columns, tasks := store.Counts()
	logger.Info("board loaded", "key", cfg.Storage.Key, "columns", columns, "tasks", tasks)

	return &session{
		cfg:       cfg,
		logger:    logger,
		svc:       app.NewService(store),
		closeRepo: closeRepo,
		stderr:    stderr,
	}, nil
}

// Close releases storage and the dev log sink.
func (s *session) Close() {
	if s == nil {
		return
	}
	if s.closeRepo != nil {
		if err := s.closeRepo(); err != nil {
			s.logger.Warn("storage close failed", "err", err)
		}
	}
	if err := s.logger.Close(); err != nil && s.logger.shouldLogToSink(s.logger.consoleSink) {
		_, _ = fmt.Fprintf(s.stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// withSession runs fn inside an opened session with command flow logging.
func withSession(ctx context.Context, opts *rootOptions, command string, stderr io.Writer, fn func(context.Context, *session) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts, command, stderr)
	if err != nil {
		return err
	}
	defer s.Close()

	s.logger.Info("command flow start", "command", command)
	if err := fn(ctx, s); err != nil {
		s.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	s.logger.Info("command flow complete", "command", command)
	return nil
}

// openPersister selects the storage backend named by config.
func openPersister(cfg config.Config, logger *runtimeLogger) (app.Persister, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		logger.Info("opening file store", "state_dir", cfg.Storage.StateDir)
		store, err := jsonfile.New(cfg.Storage.StateDir)
		if err != nil {
			logger.Error("file store open failed", "state_dir", cfg.Storage.StateDir, "err", err)
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		logger.Info("file store ready", "path", store.Path(cfg.Storage.Key))
		return store, nil, nil
	default:
		logger.Info("opening sqlite repository", "db_path", cfg.Storage.Path)
		repo, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			logger.Error("sqlite open failed", "db_path", cfg.Storage.Path, "err", err)
			return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
		}
		logger.Info("sqlite repository ready", "db_path", cfg.Storage.Path, "migrations", "ensured")
		return repo, repo.Close, nil
	}
}

// runTUI starts the interactive board.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	return withSession(ctx, opts, "tui", stderr, func(_ context.Context, s *session) error {
		m := tui.NewModel(s.svc, tui.WithMarkdownStyle(s.cfg.UI.MarkdownStyle))
		s.logger.Info("starting tui program loop")
		if _, err := programFactory(m).Run(); err != nil {
			s.logger.Error("tui program terminated with error", "err", err)
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// runExport writes the current board to outPath or stdout.
func runExport(svc *app.Service, outPath string, stdout io.Writer) error {
	if outPath == "-" || strings.TrimSpace(outPath) == "" {
		if err := app.EncodeBoard(stdout, svc.Board()); err != nil {
			return fmt.Errorf("write board to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := app.EncodeBoard(f, svc.Board()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

// runStatus prints the record key, backend, counts, and last write time.
func runStatus(ctx context.Context, s *session, stdout io.Writer) error {
	savedAt, saved, err := s.svc.SavedAt(ctx)
	if err != nil {
		return err
	}
	updated := "never"
	if saved {
		updated = savedAt.UTC().Format(time.RFC3339)
	}
	columns, tasks := s.svc.Counts()
	_, _ = fmt.Fprintf(stdout, "key: %s\n", s.svc.Key())
	_, _ = fmt.Fprintf(stdout, "backend: %s\n", s.cfg.Storage.Backend)
	_, _ = fmt.Fprintf(stdout, "columns: %d\n", columns)
	_, _ = fmt.Fprintf(stdout, "tasks: %d\n", tasks)
	_, _ = fmt.Fprintf(stdout, "updated_at: %s\n", updated)
	s.logger.Debug("board status reported", "key", s.svc.Key(), "saved", saved)
	return nil
}

// runImport replaces the board with the document at inPath.
func runImport(ctx context.Context, s *session, inPath string, stdout io.Writer) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	defer f.Close()

	board, err := app.DecodeBoard(f)
	if err != nil {
		return err
	}
	dropped, err := s.svc.Import(ctx, board)
	if err != nil {
		return fmt.Errorf("import board: %w", err)
	}
	if dropped > 0 {
		s.logger.Warn("import dropped malformed entries", "dropped", dropped)
	}
	columns, tasks := s.svc.Counts()
	_, _ = fmt.Fprintf(stdout, "imported %d columns, %d tasks (%d dropped)\n", columns, tasks, dropped)
	return nil
}

// writeDefaultConfig encodes cfg as TOML at path.
func writeDefaultConfig(path string, cfg config.Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config %q already exists (use --force to overwrite)", path)
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config toml: %w", err)
	}
	if err := config.EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// boardColumns maps configured default columns into domain columns.
func boardColumns(cfg config.Config) []domain.Column {
	out := make([]domain.Column, 0, len(cfg.Board.Columns))
	for _, column := range cfg.Board.Columns {
		out = append(out, domain.Column{ID: column.ID, Title: column.Title})
	}
	return out
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records status before delegating.
func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestLogger logs one line per served request.
func requestLogger(logger *runtimeLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(started).Round(time.Microsecond),
			)
		})
	}
}

// firstNonEmpty returns the first argument that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
