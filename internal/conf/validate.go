// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		func(s *Settings) error { return validateServerSettings(&s.Server) },
		func(s *Settings) error { return validateCatalogSettings(&s.Catalog) },
		func(s *Settings) error { return validateImageSettings(&s.Images) },
		func(s *Settings) error { return validateGameSettings(&s.Game) },
		func(s *Settings) error { return validateSentrySettings(&s.Sentry) },
		func(s *Settings) error { return validateMQTTSettings(&s.MQTT) },
	}

	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateServerSettings(settings *ServerSettings) error {
	if settings.Port < 1 || settings.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", settings.Port)
	}
	if err := validateAbsoluteURL("server.baseurl", settings.BaseURL); err != nil {
		return err
	}
	// Asset urls are built as baseurl + "/static/..."
	settings.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	return nil
}

func validateCatalogSettings(settings *CatalogSettings) error {
	if err := validateAbsoluteURL("catalog.baseurl", settings.BaseURL); err != nil {
		return err
	}
	if !strings.HasSuffix(settings.BaseURL, "/") {
		settings.BaseURL += "/"
	}
	if settings.MinID < 1 {
		return fmt.Errorf("catalog.minid must be at least 1, got %d", settings.MinID)
	}
	if settings.MaxID < settings.MinID {
		return fmt.Errorf("catalog.maxid (%d) must not be below catalog.minid (%d)", settings.MaxID, settings.MinID)
	}
	// Three distractors need at least three ids besides the target
	if settings.MaxID-settings.MinID < 3 {
		return fmt.Errorf("catalog id range must contain at least 4 ids")
	}
	if settings.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive")
	}
	if settings.RateLimit < 0 {
		return fmt.Errorf("catalog.ratelimit must not be negative")
	}
	if settings.WarmupConcurrency < 1 {
		settings.WarmupConcurrency = 1
	}
	return nil
}

func validateImageSettings(settings *ImageSettings) error {
	if settings.StaticDir == "" {
		return fmt.Errorf("images.staticdir must be set")
	}
	if settings.Timeout <= 0 {
		return fmt.Errorf("images.timeout must be positive")
	}
	return nil
}

func validateGameSettings(settings *GameSettings) error {
	if settings.MaxDistractorDraws < 3 {
		return fmt.Errorf("game.maxdistractordraws must be at least 3, got %d", settings.MaxDistractorDraws)
	}
	return nil
}

func validateSentrySettings(settings *SentrySettings) error {
	if settings.Enabled && settings.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	return nil
}

func validateMQTTSettings(settings *MQTTSettings) error {
	if !settings.Enabled {
		return nil
	}
	if settings.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	if settings.Topic == "" {
		return fmt.Errorf("mqtt.topic is required when mqtt is enabled")
	}
	return nil
}

func validateAbsoluteURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
	}
	return nil
}
