package main

import (
	"github.com/spf13/cobra"

	corepersistence "github.com/iota-uz/taskdesk/modules/core/infrastructure/persistence"
	"github.com/iota-uz/taskdesk/modules/core/seed"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the baseline permission catalog and roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			seeder := seed.New(
				corepersistence.NewPermissionRepository(),
				corepersistence.NewRoleRepository(),
				a.log,
				a.cfg.ChairmanRoleID,
			)
			return seeder.EnsureSeeded(a.context(cmd.Context()))
		},
	}
}
