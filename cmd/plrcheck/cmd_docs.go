package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plrcheck/internal/docs"
)

func newDocsCommand(logger func() *zap.Logger) *cobra.Command {
	var (
		repo string
		ref  string
	)

	cmd := &cobra.Command{
		Use:       "docs <liquid|material>",
		Short:     "Print a PyLabRobot user-guide section assembled from the pinned upstream docs",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{docs.SectionLiquid, docs.SectionMaterial},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			defer log.Sync()

			fetcher := docs.NewFetcher(docs.Config{
				Repo:   repo,
				Ref:    ref,
				Logger: log,
			})

			var guide string
			switch args[0] {
			case docs.SectionLiquid:
				guide = fetcher.LiquidHandlingGuide(cmd.Context())
			case docs.SectionMaterial:
				guide = fetcher.MaterialHandlingGuide(cmd.Context())
			default:
				return fmt.Errorf("unknown section %q", args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), guide)
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "override the upstream GitHub repository (owner/name)")
	cmd.Flags().StringVar(&ref, "ref", "", "override the pinned upstream commit")

	return cmd
}
