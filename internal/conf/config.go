// config.go: settings structure and loading for pokeguess
package conf

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pokeguess/pokeguess/internal/errors"
)

// Settings contains all configuration options for the service.
type Settings struct {
	Debug bool `yaml:"debug"`

	Server  ServerSettings  `yaml:"server"`
	Catalog CatalogSettings `yaml:"catalog"`
	Images  ImageSettings   `yaml:"images"`
	Game    GameSettings    `yaml:"game"`
	Logging LogSettings     `yaml:"logging"`
	Metrics MetricsSettings `yaml:"metrics"`
	Sentry  SentrySettings  `yaml:"sentry"`
	MQTT    MQTTSettings    `yaml:"mqtt"`
}

// ServerSettings contains HTTP server settings.
type ServerSettings struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	BaseURL         string        `yaml:"baseurl"` // prefix for asset urls returned to clients
	ReadTimeout     time.Duration `yaml:"readtimeout"`
	WriteTimeout    time.Duration `yaml:"writetimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdowntimeout"`
	BodyLimit       string        `yaml:"bodylimit"`
	AllowedOrigins  []string      `yaml:"allowedorigins"`
}

// CatalogSettings contains settings for the upstream pokemon catalog.
type CatalogSettings struct {
	BaseURL           string        `yaml:"baseurl"`
	MinID             int           `yaml:"minid"`
	MaxID             int           `yaml:"maxid"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"useragent"`
	RateLimit         float64       `yaml:"ratelimit"` // requests per second, 0 disables
	Warmup            bool          `yaml:"warmup"`    // prefetch the whole id range on start
	WarmupConcurrency int           `yaml:"warmupconcurrency"`
}

// ImageSettings contains settings for derived image assets.
type ImageSettings struct {
	StaticDir string        `yaml:"staticdir"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GameSettings contains round generation settings.
type GameSettings struct {
	DistinctOptions    bool `yaml:"distinctoptions"`
	MaxDistractorDraws int  `yaml:"maxdistractordraws"`
}

// LogSettings contains logging settings.
type LogSettings struct {
	Level string          `yaml:"level"`
	File  LogFileSettings `yaml:"file"`
}

// LogFileSettings contains rotated log file settings.
type LogFileSettings struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxsize"`
	MaxAge     int    `yaml:"maxage"`
	MaxBackups int    `yaml:"maxbackups"`
	Compress   bool   `yaml:"compress"`
}

// MetricsSettings contains Prometheus settings.
type MetricsSettings struct {
	Enabled bool `yaml:"enabled"`
}

// SentrySettings contains error telemetry settings.
type SentrySettings struct {
	Enabled     bool   `yaml:"enabled"`
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// MQTTSettings contains game event publishing settings.
type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientid"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file, .env file and environment variables.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal-config").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper sets defaults, environment bindings and reads the config file if present.
func initViper() error {
	// A .env file is optional; variables already in the environment win.
	_ = godotenv.Load()

	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		for _, path := range GetDefaultConfigPaths() {
			viper.AddConfigPath(path)
		}
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		log.Printf("Warning: %v", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Defaults and environment are enough to run
			return nil
		}
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "read-config").
			Build()
	}

	return nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if GetSettings() == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// MarshalYAML renders settings as YAML with secrets masked.
func (s *Settings) MarshalYAML() (any, error) {
	type plain Settings
	masked := plain(*s)
	if masked.MQTT.Password != "" {
		masked.MQTT.Password = maskedValue
	}
	if masked.Sentry.DSN != "" {
		masked.Sentry.DSN = maskedValue
	}
	return masked, nil
}

const maskedValue = "********"

// DumpYAML returns the effective settings as YAML.
func DumpYAML(settings *Settings) ([]byte, error) {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}

// Address returns the host:port the HTTP server listens on.
func (s *ServerSettings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
