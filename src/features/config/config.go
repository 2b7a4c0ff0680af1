package config

// Config holds the application configuration.
type Config struct {
	DataPath   string     `yaml:"dataPath" validate:"required"`
	Host       Host       `yaml:"host"`
	Catalog    Catalog    `yaml:"catalog"`
	Completion Completion `yaml:"completion"`
	Spool      Spool      `yaml:"spool"`
	Telegram   Telegram   `yaml:"telegram"`
	Logger     Logger     `yaml:"logger"`
	Server     Server     `yaml:"server"`
}

// Host holds the connection settings for the media host whose playback this
// service records.
type Host struct {
	URL   string `yaml:"url" validate:"required,url"`
	Token string `yaml:"token"`
}

// Catalog points at the host's library database, opened read-only. Leave
// the path empty to run without genre resolution.
type Catalog struct {
	DatabasePath string `yaml:"database_path"`
}

// Completion holds the writer-side completion policy: a session counts as
// completed once playback reaches this fraction of the track duration.
type Completion struct {
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`
}

// Spool configures the drop-directory watcher for playback event files.
type Spool struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Telegram configures the optional stats bot. Users maps allowed telegram
// usernames (no @) to host user ids.
type Telegram struct {
	Enabled bool              `yaml:"enabled"`
	Token   string            `yaml:"token"`
	Users   map[string]string `yaml:"users"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}
