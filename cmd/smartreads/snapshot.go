package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"smartreads/internal/catalog"
	"smartreads/internal/storage"
	"smartreads/internal/tasks"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Catalog snapshots",
	}
	cmd.AddCommand(newSnapshotExportCmd())
	return cmd
}

func newSnapshotExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the latest verified snapshot, or the demo fixtures, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			cat := catalog.NewWithFixtures()
			if a.cfg.SnapshotsEnabled() {
				store, err := storage.NewSnapshotStore(a.cfg.Storage)
				if err != nil {
					return err
				}
				p := tasks.NewProcessor(cat, a.guard, store, a.cfg.Security.ProfileSecret, a.log)
				if err := p.RestoreLatest(cmd.Context()); err != nil && !errors.Is(err, storage.ErrNoSnapshot) {
					return err
				}
			}

			body, err := cat.MarshalSnapshot()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}
			return os.WriteFile(out, body, 0o644)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}
