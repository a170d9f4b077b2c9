// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "POKEGUESS_DEBUG", validateEnvBool},

		{"server.host", "POKEGUESS_SERVER_HOST", nil},
		{"server.port", "POKEGUESS_SERVER_PORT", validateEnvPort},
		{"server.baseurl", "POKEGUESS_SERVER_BASEURL", validateEnvURL},
		{"server.allowedorigins", "POKEGUESS_SERVER_ALLOWEDORIGINS", nil},

		{"catalog.baseurl", "POKEGUESS_CATALOG_BASEURL", validateEnvURL},
		{"catalog.minid", "POKEGUESS_CATALOG_MINID", validateEnvPositiveInt},
		{"catalog.maxid", "POKEGUESS_CATALOG_MAXID", validateEnvPositiveInt},
		{"catalog.ratelimit", "POKEGUESS_CATALOG_RATELIMIT", validateEnvNonNegativeFloat},
		{"catalog.warmup", "POKEGUESS_CATALOG_WARMUP", validateEnvBool},

		{"images.staticdir", "POKEGUESS_IMAGES_STATICDIR", nil},

		{"game.distinctoptions", "POKEGUESS_GAME_DISTINCTOPTIONS", validateEnvBool},

		{"logging.level", "POKEGUESS_LOG_LEVEL", validateEnvLogLevel},

		{"metrics.enabled", "POKEGUESS_METRICS_ENABLED", validateEnvBool},

		{"sentry.enabled", "POKEGUESS_SENTRY_ENABLED", validateEnvBool},
		{"sentry.dsn", "POKEGUESS_SENTRY_DSN", nil},

		{"mqtt.enabled", "POKEGUESS_MQTT_ENABLED", validateEnvBool},
		{"mqtt.broker", "POKEGUESS_MQTT_BROKER", validateEnvURL},
		{"mqtt.username", "POKEGUESS_MQTT_USERNAME", nil},
		{"mqtt.password", "POKEGUESS_MQTT_PASSWORD", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("must be a port number between 1 and 65535")
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateEnvNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("must be an absolute URL")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("must be one of trace, debug, info, warn, error")
	}
}
