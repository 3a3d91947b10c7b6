package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Choose the script folder of this machine",
		Long: `Choose the script folder of this machine. The folder is recorded in
the global config and a local config is created inside it. Defaults to
the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			} else {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				path = wd
			}

			if err := a.handler.SetLocalPath(path); err != nil {
				return err
			}
			if err := a.handler.LoadLocalConfig(""); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", a.handler.LocalFile().Path())

			return nil
		},
	}
}
