package cli

import (
	"github.com/spf13/cobra"
)

func newRetierPublishersCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "retier-publishers",
		Short: "Recalculate publisher tiers from current book counts",
		Long: `Recalculate the tier of every publisher from the number of books
currently attributed to it. Only publishers whose tier actually changes
are written.

This is an operator action and is intentionally not reachable over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			logger := flags.newLogger()

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			changed, err := store.RetierPublishers(ctx)
			if err != nil {
				return err
			}

			cmd.Printf("retiered %d publisher(s)\n", changed)

			return nil
		},
	}
}
