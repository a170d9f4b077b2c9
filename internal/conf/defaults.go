// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultCatalogBaseURL = "https://pokeapi.co/api/v2/pokemon/"
	DefaultMinID          = 1
	DefaultMaxID          = 50
	DefaultFetchTimeout   = 5 * time.Second
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("server.host", "")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.baseurl", "http://127.0.0.1:5000")
	viper.SetDefault("server.readtimeout", 30*time.Second)
	viper.SetDefault("server.writetimeout", 30*time.Second)
	viper.SetDefault("server.shutdowntimeout", 10*time.Second)
	viper.SetDefault("server.bodylimit", "64K")
	viper.SetDefault("server.allowedorigins", []string{"*"})

	viper.SetDefault("catalog.baseurl", DefaultCatalogBaseURL)
	viper.SetDefault("catalog.minid", DefaultMinID)
	viper.SetDefault("catalog.maxid", DefaultMaxID)
	viper.SetDefault("catalog.timeout", DefaultFetchTimeout)
	viper.SetDefault("catalog.useragent", "pokeguess")
	viper.SetDefault("catalog.ratelimit", 0.0)
	viper.SetDefault("catalog.warmup", false)
	viper.SetDefault("catalog.warmupconcurrency", 4)

	viper.SetDefault("images.staticdir", "static")
	viper.SetDefault("images.timeout", DefaultFetchTimeout)

	viper.SetDefault("game.distinctoptions", false)
	viper.SetDefault("game.maxdistractordraws", 200)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file.enabled", false)
	viper.SetDefault("logging.file.path", "logs/pokeguess.log")
	viper.SetDefault("logging.file.maxsize", 100)
	viper.SetDefault("logging.file.maxage", 30)
	viper.SetDefault("logging.file.maxbackups", 10)
	viper.SetDefault("logging.file.compress", false)

	viper.SetDefault("metrics.enabled", true)

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")
	viper.SetDefault("sentry.environment", "production")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "pokeguess/events")
	viper.SetDefault("mqtt.clientid", "pokeguess")
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
}
