package commands

import (
	"fmt"

	"github.com/smx-cli/smx"
	"github.com/spf13/cobra"
)

func newTargetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target",
		Aliases: []string{"targets"},
		Short:   "Manage targets",
	}

	addCmd := &cobra.Command{
		Use:   "add <id> [name]",
		Short: "Add a target and create its folder",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			var name string
			if len(args) > 1 {
				name = args[1]
			}

			targets := smx.NewTargets(a.settings)
			tc, err := targets.Add(args[0], name)
			if err != nil {
				return err
			}

			if targets.Default() == "" {
				if err := targets.SetDefault(tc.ID); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added target %s\n", tc.ID)

			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List targets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			targets := smx.NewTargets(a.settings)
			def := targets.Default()
			out := cmd.OutOrStdout()
			for _, tc := range targets.List() {
				marker := " "
				if tc.ID == def {
					marker = "*"
				}
				folder, _ := targets.Folder(tc.ID)
				fmt.Fprintf(out, "%s %s\t%s\t%s\n", marker, tc.ID, tc.Name, folder)
			}

			return nil
		},
	}

	var keepFolder bool
	removeCmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a target that is not the default target",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			return smx.NewTargets(a.settings).Delete(args[0], !keepFolder)
		},
	}
	removeCmd.Flags().BoolVar(&keepFolder, "keep-folder", false, "Keep the target folder on disk")

	resetCmd := &cobra.Command{
		Use:   "reset <id>",
		Short: "Clear the settings of a target and empty its folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			return smx.NewTargets(a.settings).Reset(args[0])
		},
	}

	defaultCmd := &cobra.Command{
		Use:   "default [id]",
		Short: "Print or change the default target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			targets := smx.NewTargets(a.settings)
			if len(args) < 1 {
				fmt.Fprintln(cmd.OutOrStdout(), targets.Default())

				return nil
			}

			return targets.SetDefault(args[0])
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change the display name of a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			return smx.NewTargets(a.settings).Rename(args[0], args[1])
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd, resetCmd, defaultCmd, renameCmd)

	return cmd
}
