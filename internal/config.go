package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jotter/internal/boundary"
	"github.com/starford/jotter/internal/display"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var extensionRe = regexp.MustCompile(`^\.[^./\\]+$`)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Notes  NotesConfig       `yaml:"notes"`
	State  StateConfig       `yaml:"state"`
	Picker PickerConfig      `yaml:"picker"`
	Menu   MenuConfig        `yaml:"menu"`
	Watch  WatchConfig       `yaml:"watch"`
	UI     UIConfig          `yaml:"ui"`
	Auth   AuthConfig        `yaml:"auth"`
	Remote RemoteConfig      `yaml:"remote"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Notes, &c.State, &c.Menu, &c.Watch, &c.UI, &c.Auth, &c.Remote,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration. LogFile receives
// the logs of the tui command, whose terminal belongs to the renderer.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	LogFile  string     `yaml:"log_file"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFile, validation.Required),
	); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig describes which files in a notes directory are managed.
type NotesConfig struct {
	Extension string   `yaml:"extension"`
	JunkFiles []string `yaml:"junk_files"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionRe)),
		validation.Field(&c.JunkFiles, validation.Each(validation.Required)),
	); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	return nil
}

// StateConfig holds the path of the client state database.
type StateConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}

// PickerConfig selects the external directory dialog used by the serve
// command. The tui command browses in-terminal when Command is empty.
type PickerConfig struct {
	Command []string `yaml:"command"`
}

// MenuConfig bounds how long a presented context menu waits for an answer.
type MenuConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the menu configuration.
func (c *MenuConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	return nil
}

// WatchConfig configures the directory watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required),
	); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// UIConfig holds the sidebar geometry, in terminal cells.
type UIConfig struct {
	SidebarWidth    int `yaml:"sidebar_width"`
	MinSidebarWidth int `yaml:"min_sidebar_width"`
	ResizeBand      int `yaml:"resize_band"`
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MinSidebarWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.SidebarWidth, validation.Required, validation.Min(c.MinSidebarWidth)),
		validation.Field(&c.ResizeBand, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication, for a server bound to localhost.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// RemoteConfig points the tui command at a serve instance. An empty URL
// runs the privileged side in-process.
type RemoteConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.By(httpURL)),
	); err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	return nil
}

// Enabled reports whether a remote server is configured.
func (c *RemoteConfig) Enabled() bool {
	return c.URL != ""
}

func httpURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("must be an http(s) URL")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			LogFile:  "./jotter.log",
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Extension: models.DefaultExtension,
			JunkFiles: []string{models.DefaultJunkFile},
		},
		State: StateConfig{
			Path: "./jotter.db",
		},
		Menu: MenuConfig{
			Timeout: boundary.DefaultMenuTimeout,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: watch.DefaultDebounce,
		},
		UI: UIConfig{
			SidebarWidth:    display.DefaultSidebarWidth,
			MinSidebarWidth: display.DefaultMinSidebarWidth,
			ResizeBand:      display.DefaultResizeBand,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
