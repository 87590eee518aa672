package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const ConfigFileName = "relgrid.config.json"

type Config struct {
	Version  string   `json:"version" mapstructure:"version"`
	Grid     Grid     `json:"grid" mapstructure:"grid"`
	Database Database `json:"database" mapstructure:"database"`
	Server   Server   `json:"server" mapstructure:"server"`
}

// Grid is the host-supplied configuration surface of the related list.
type Grid struct {
	ObjectName         string `json:"object_name" mapstructure:"object_name"`
	RelationshipField  string `json:"relationship_field" mapstructure:"relationship_field"`
	FieldsToDisplay    string `json:"fields_to_display" mapstructure:"fields_to_display"`
	CardTitle          string `json:"card_title" mapstructure:"card_title"`
	PageSize           int    `json:"page_size" mapstructure:"page_size"`
	AllowInlineEdit    bool   `json:"allow_inline_edit" mapstructure:"allow_inline_edit"`
	AllowBulkEdit      bool   `json:"allow_bulk_edit" mapstructure:"allow_bulk_edit"`
	AllowDelete        bool   `json:"allow_delete" mapstructure:"allow_delete"`
	ShowRowNumbers     bool   `json:"show_row_numbers" mapstructure:"show_row_numbers"`
	HideCheckboxColumn bool   `json:"hide_checkbox_column" mapstructure:"hide_checkbox_column"`
	MaxRowSelection    int    `json:"max_row_selection" mapstructure:"max_row_selection"`
	SortField          string `json:"sort_field" mapstructure:"sort_field"`
	SortDirection      string `json:"sort_direction" mapstructure:"sort_direction"`
	ValidateOnSave     bool   `json:"validate_on_save" mapstructure:"validate_on_save"`
	CurrencyCode       string `json:"currency_code" mapstructure:"currency_code"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Server struct {
	Port           string   `json:"port" mapstructure:"port"`
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins"`
}

// FieldNames splits the comma-separated display list into trimmed names.
func (g Grid) FieldNames() []string {
	parts := strings.Split(g.FieldsToDisplay, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Grid: Grid{
			ObjectName:        "Contact",
			RelationshipField: "AccountId",
			FieldsToDisplay:   "Name,Email,Phone,Title",
			CardTitle:         "Related Records",
			PageSize:          10,
			AllowInlineEdit:   true,
			AllowBulkEdit:     true,
			AllowDelete:       true,
			ShowRowNumbers:    true,
			MaxRowSelection:   200,
			SortField:         "Name",
			SortDirection:     "asc",
			ValidateOnSave:    true,
			CurrencyCode:      "USD",
		},
		Database: Database{
			Provider: "postgresql",
			URLEnv:   "DATABASE_URL",
		},
		Server: Server{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load unmarshals the viper-backed configuration and fills defaults for
// anything the file leaves out.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Grid.ObjectName == "" {
		cfg.Grid.ObjectName = defaults.Grid.ObjectName
	}
	if cfg.Grid.RelationshipField == "" {
		cfg.Grid.RelationshipField = defaults.Grid.RelationshipField
	}
	if cfg.Grid.FieldsToDisplay == "" {
		cfg.Grid.FieldsToDisplay = defaults.Grid.FieldsToDisplay
	}
	if cfg.Grid.CardTitle == "" {
		cfg.Grid.CardTitle = defaults.Grid.CardTitle
	}
	if cfg.Grid.PageSize == 0 {
		cfg.Grid.PageSize = defaults.Grid.PageSize
	}
	if cfg.Grid.MaxRowSelection == 0 {
		cfg.Grid.MaxRowSelection = defaults.Grid.MaxRowSelection
	}
	if cfg.Grid.SortField == "" {
		cfg.Grid.SortField = defaults.Grid.SortField
	}
	if cfg.Grid.SortDirection == "" {
		cfg.Grid.SortDirection = defaults.Grid.SortDirection
	}
	if cfg.Grid.CurrencyCode == "" {
		cfg.Grid.CurrencyCode = defaults.Grid.CurrencyCode
	}
	// Permission toggles default to enabled; a file must set them to
	// false explicitly.
	if !viper.IsSet("grid.allow_inline_edit") {
		cfg.Grid.AllowInlineEdit = true
	}
	if !viper.IsSet("grid.allow_bulk_edit") {
		cfg.Grid.AllowBulkEdit = true
	}
	if !viper.IsSet("grid.allow_delete") {
		cfg.Grid.AllowDelete = true
	}
	if !viper.IsSet("grid.show_row_numbers") {
		cfg.Grid.ShowRowNumbers = true
	}
	if !viper.IsSet("grid.validate_on_save") {
		cfg.Grid.ValidateOnSave = true
	}
	if cfg.Database.Provider == "" {
		cfg.Database.Provider = defaults.Database.Provider
	}
	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = defaults.Database.URLEnv
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}

	return &cfg, nil
}

// GetDatabaseURL resolves the connection string from the configured
// environment variable.
func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, supportedProviders)
	}

	if c.Grid.ObjectName == "" {
		return fmt.Errorf("grid.object_name cannot be empty")
	}
	if c.Grid.RelationshipField == "" {
		return fmt.Errorf("grid.relationship_field cannot be empty")
	}
	if len(c.Grid.FieldNames()) == 0 {
		return fmt.Errorf("grid.fields_to_display cannot be empty")
	}
	if c.Grid.PageSize < 1 {
		return fmt.Errorf("grid.page_size must be positive")
	}
	if dir := strings.ToLower(c.Grid.SortDirection); dir != "asc" && dir != "desc" {
		return fmt.Errorf("grid.sort_direction must be asc or desc, got %s", c.Grid.SortDirection)
	}

	return nil
}

// IsInitialized reports whether a project config file exists in the
// working directory.
func IsInitialized() bool {
	_, err := os.Stat(ConfigFileName)
	return err == nil
}

// InitializeProject writes the default config file; it refuses to
// overwrite an existing one.
func InitializeProject() error {
	if IsInitialized() {
		return fmt.Errorf("project already initialized: %s exists", ConfigFileName)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(ConfigFileName, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}
	return nil
}
