package main

import (
	"fmt"

	"inkwell/internal/bootstrap"
	"inkwell/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var opts seed.Options

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fixture categories and tags plus fake users, posts and comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()

			report, err := seed.NewSeeder(rt.DB, opts.RandSeed).Run(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d posts, %d comments\n",
				report.Users, report.Posts, report.Comments)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", 10, "number of users to create")
	cmd.Flags().IntVar(&opts.Posts, "posts", 30, "number of posts to create")
	cmd.Flags().IntVar(&opts.CommentsPerPost, "comments", 3, "comments per post")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "delete existing blog content first")
	cmd.Flags().Int64Var(&opts.RandSeed, "rand-seed", 0, "seed for reproducible fake content")
	return cmd
}
