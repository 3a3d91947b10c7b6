package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/smx-cli/smx"
	"github.com/spf13/cobra"
)

func newEditorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "editor",
		Aliases: []string{"editors"},
		Short:   "Manage editors and open the script folder",
	}

	var contexts, alias string
	addCmd := &cobra.Command{
		Use:   "add <name> <command>",
		Short: "Add an editor",
		Long: `Add an editor. The command is split like a shell would. The token
__TARGET_PATH (or --alias) is replaced with the path to open.

Example:

  smx editor add code 'code --wait __TARGET_PATH' --context file,folder`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			argv, err := smx.ParseCommand(args[1])
			if err != nil {
				return err
			}
			ctxs, err := smx.ParseContexts(contexts)
			if err != nil {
				return err
			}

			return smx.NewEditors(a.handler, nil).Add(args[0], smx.EditorConfig{
				Args:        argv,
				Context:     ctxs,
				TargetAlias: alias,
			})
		},
	}
	addCmd.Flags().StringVar(&contexts, "context", "file", "Comma separated contexts (file,folder,diff)")
	addCmd.Flags().StringVar(&alias, "alias", "", "Placeholder token (default __TARGET_PATH)")

	removeCmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove an editor",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			return smx.NewEditors(a.handler, nil).Remove(args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List editors",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			editors := smx.NewEditors(a.handler, nil)
			out := cmd.OutOrStdout()
			for _, name := range editors.Names() {
				ec, _ := editors.Get(name)
				ctxs := make([]string, 0, len(ec.Context))
				for _, c := range ec.Context {
					ctxs = append(ctxs, string(c))
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", name, strings.Join(ctxs, ","), strings.Join(ec.Args, " "))
			}

			return nil
		},
	}

	var editorName, contextName string
	openCmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Open a path, the active target folder by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(true); err != nil {
				return err
			}

			ctx, err := smx.ParseContext(contextName)
			if err != nil {
				return err
			}

			var path string
			if len(args) > 0 {
				path = args[0]
			} else {
				id := a.handler.TargetID()
				if id == "" {
					path = a.handler.LocalRoot()
				} else if path, err = smx.NewTargets(a.settings).Folder(id); err != nil {
					return err
				}
			}

			name := editorName
			if name == "" {
				name = a.editor.Tool(ctx)
			}

			editors := smx.NewEditors(a.handler, &smx.ExecRunner{
				Stdin:  os.Stdin,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			})

			res, err := editors.Open(cmd.Context(), name, path, ctx, a.handler.LocalRoot())
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("editor %s exited with code %d", name, res.Code)
			}

			return nil
		},
	}
	openCmd.Flags().StringVarP(&editorName, "editor", "e", "", "Editor to use (default editor.<context>.tool)")
	openCmd.Flags().StringVarP(&contextName, "context", "c", string(smx.ContextFolder), "Context (file|folder|diff)")

	cmd.AddCommand(addCmd, removeCmd, listCmd, openCmd)

	return cmd
}
