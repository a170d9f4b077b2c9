package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pokeguess/pokeguess/internal/conf"
)

// Command creates the config command printing the effective settings.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long:  "Print defaults merged with config.yaml, environment variables and flags. Secrets are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := conf.DumpYAML(settings)
			if err != nil {
				return err
			}
			if used := viper.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", used)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "# no config file found, using defaults and environment")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
