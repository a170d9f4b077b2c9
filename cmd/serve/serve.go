package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pokeguess/pokeguess/internal/app"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/conf"
)

// Command creates the serve command that runs the HTTP server until
// SIGINT or SIGTERM.
func Command(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Long:  "Serve random rounds, guess checking and the derived pokemon images over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, settings, info)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func run(ctx context.Context, settings *conf.Settings, info *buildinfo.Context) error {
	a, err := app.New(settings, info)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Serve(ctx)
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Server.Host, "host", viper.GetString("server.host"), "Interface to listen on, empty for all")
	cmd.Flags().IntVarP(&settings.Server.Port, "port", "p", viper.GetInt("server.port"), "Port to listen on")
	cmd.Flags().StringVar(&settings.Server.BaseURL, "base-url", viper.GetString("server.baseurl"), "Public URL prefix of image links returned to players")
	cmd.Flags().BoolVar(&settings.Catalog.Warmup, "warmup", viper.GetBool("catalog.warmup"), "Prefetch the whole id range on start")
	cmd.Flags().BoolVar(&settings.Game.DistinctOptions, "distinct-options", viper.GetBool("game.distinctoptions"), "Never offer the same name twice in a round")
	cmd.Flags().BoolVar(&settings.MQTT.Enabled, "mqtt", viper.GetBool("mqtt.enabled"), "Publish game events to MQTT")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
