// Package cmd holds the pokeguess command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pokeguess/pokeguess/cmd/config"
	"github.com/pokeguess/pokeguess/cmd/serve"
	"github.com/pokeguess/pokeguess/cmd/warmup"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/conf"
)

// RootCommand creates and returns the root command. Running it without a
// subcommand starts the server.
func RootCommand(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pokeguess",
		Short:        "Pokemon silhouette guessing game server",
		Version:      fmt.Sprintf("%s (built %s)", info.GetVersion(), info.GetBuildDate()),
		SilenceUsage: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	serveCmd := serve.Command(settings, info)
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(
		serveCmd,
		warmup.Command(settings, info),
		config.Command(settings),
	)

	// Flags write straight into settings, so validate once more after parsing
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVar(&settings.Catalog.BaseURL, "catalog-url", viper.GetString("catalog.baseurl"), "Base URL of the pokemon catalog API")
	flags.IntVar(&settings.Catalog.MinID, "min-id", viper.GetInt("catalog.minid"), "Lowest pokemon id used in rounds")
	flags.IntVar(&settings.Catalog.MaxID, "max-id", viper.GetInt("catalog.maxid"), "Highest pokemon id used in rounds")
	flags.StringVar(&settings.Images.StaticDir, "static-dir", viper.GetString("images.staticdir"), "Directory holding derived images")

	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
