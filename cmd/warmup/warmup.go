package warmup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pokeguess/pokeguess/internal/app"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/conf"
	"github.com/pokeguess/pokeguess/internal/imageprovider"
)

// Command creates the warmup command, which fetches every record in the id
// range and optionally derives all silhouettes ahead of time.
func Command(settings *conf.Settings, info *buildinfo.Context) *cobra.Command {
	var withImages bool

	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Prefetch pokemon records and images",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings, info)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Warm(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d records (%d failed) in %s\n", result.Loaded, result.Failed, result.Duration)

			if !withImages {
				return nil
			}

			var derived, failed int
			minID, maxID := a.Cache.Range()
			for id := minID; id <= maxID; id++ {
				record, err := a.Cache.ResolveID(cmd.Context(), id)
				if err != nil {
					continue
				}
				if _, err := a.Deriver.EnsureSilhouette(cmd.Context(), record.ID, record.ArtworkURL); err != nil {
					failed++
					fmt.Printf("%d %s: %v\n", record.ID, record.Name, err)
					continue
				}
				derived++
			}
			fmt.Printf("Derived images for %d pokemon (%d failed) in %s\n",
				derived, failed, a.Deriver.Dir(imageprovider.KindSilhouette))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withImages, "images", false, "Also derive silhouette and full images")
	cmd.Flags().IntVar(&settings.Catalog.WarmupConcurrency, "concurrency", viper.GetInt("catalog.warmupconcurrency"), "Parallel catalog lookups")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}
