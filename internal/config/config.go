package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Backend selects the board persister.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Board   BoardConfig   `toml:"board"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
	UI      UIConfig      `toml:"ui"`
}

type StorageConfig struct {
	Backend  Backend `toml:"backend"`
	Path     string  `toml:"path"`
	StateDir string  `toml:"state_dir"`
	Key      string  `toml:"key"`
}

type BoardConfig struct {
	Columns []ColumnConfig `toml:"columns"`
}

type ColumnConfig struct {
	ID    string `toml:"id"`
	Title string `toml:"title"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type UIConfig struct {
	MarkdownStyle string `toml:"markdown_style"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Title: "To Do"},
		{ID: "doing", Title: "In Progress"},
		{ID: "done", Title: "Done"},
	}
}

func Default(dbPath, stateDir string) Config {
	return Config{
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Path:     dbPath,
			StateDir: stateDir,
			Key:      "kanban-storage",
		},
		Board: BoardConfig{
			Columns: defaultColumns(),
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".kanboard/log",
			},
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			MarkdownStyle: "dark",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// Board columns replace rather than merge.
	cfg.Board.Columns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if len(cfg.Board.Columns) == 0 {
		cfg.Board.Columns = defaults.Board.Columns
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("storage.path is required for the sqlite backend")
		}
	case BackendFile:
		if strings.TrimSpace(c.Storage.StateDir) == "" {
			return errors.New("storage.state_dir is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seen := map[string]struct{}{}
	for idx, column := range c.Board.Columns {
		id := strings.TrimSpace(column.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if strings.TrimSpace(column.Title) == "" {
			return fmt.Errorf("board.columns[%d].title is required", idx)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seen[id] = struct{}{}
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if !strings.HasPrefix(strings.TrimSpace(endpoint), "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	switch strings.TrimSpace(strings.ToLower(c.UI.MarkdownStyle)) {
	case "dark", "light", "notty", "ascii", "auto":
	default:
		return fmt.Errorf("invalid ui.markdown_style: %q", c.UI.MarkdownStyle)
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
