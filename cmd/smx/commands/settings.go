package commands

import (
	"fmt"

	"github.com/smx-cli/smx"
	"github.com/spf13/cobra"
)

func newSettingsCmd(a *app) *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change settings",
		Long: `Read and change settings.

Without --scope reads return the value of the highest priority scope
(target, local, global) and writes go to the local scope.`,
	}
	cmd.PersistentFlags().StringVarP(&scopeName, "scope", "s", "", "Scope (global|local|target)")

	scope := func() (smx.Scope, error) {
		return smx.ParseScope(scopeName)
	}

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scope()
			if err != nil {
				return err
			}
			if err := a.load(true); err != nil {
				return err
			}

			v, found := a.settings.Get(args[0], sc, "")
			if !found {
				return fmt.Errorf("%s is not set", args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))

			return nil
		},
	}

	var goos string
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long: `Change a setting. JSON literals (numbers, true, false, null, arrays,
quoted strings) are stored as such, anything else as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scope()
			if err != nil {
				return err
			}
			if err := a.load(true); err != nil {
				return err
			}

			v := smx.ParseValue(args[1])
			if goos != "" {
				return a.settings.SetForOS(args[0], v, goos, sc, "")
			}

			return a.settings.Set(args[0], v, sc, "")
		},
	}
	setCmd.Flags().StringVar(&goos, "os", "", "Only change the value on this operating system (windows|linux|darwin)")

	deleteCmd := &cobra.Command{
		Use:     "delete <key>",
		Aliases: []string{"rm", "unset"},
		Short:   "Remove a setting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scope()
			if err != nil {
				return err
			}
			if err := a.load(true); err != nil {
				return err
			}

			return a.settings.Delete(args[0], sc, "")
		},
	}

	var origin bool
	listCmd := &cobra.Command{
		Use:     "list [pattern]",
		Aliases: []string{"ls"},
		Short:   "List settings, optionally filtered by a glob such as editor.**",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scope()
			if err != nil {
				return err
			}
			if err := a.load(true); err != nil {
				return err
			}

			var pattern string
			if len(args) > 0 {
				pattern = args[0]
			}

			keys, err := a.settings.List(pattern, sc, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, k := range keys {
				v, _ := a.settings.Get(k, sc, "")
				if origin && sc == smx.ScopeAuto {
					from, _ := a.settings.Origin(k, "")
					fmt.Fprintf(out, "%s=%s (%s)\n", k, formatValue(v), from)

					continue
				}
				fmt.Fprintf(out, "%s=%s\n", k, formatValue(v))
			}

			return nil
		},
	}
	listCmd.Flags().BoolVar(&origin, "origin", false, "Print the scope each value comes from")

	cmd.AddCommand(getCmd, setCmd, deleteCmd, listCmd)

	return cmd
}
