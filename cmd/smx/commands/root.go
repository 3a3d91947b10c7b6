// Package commands provides the CLI commands for smx.
package commands

import (
	"fmt"

	"github.com/smx-cli/smx"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// app is the composition root shared by all commands of one invocation.
type app struct {
	globalConfig string
	localConfig  string
	target       string

	handler  *smx.Handler
	settings *smx.Manager
	editor   *smx.EditorSettings
	git      *smx.GitSettings
}

// load reads the global config and, if needLocal is set, the local config.
func (a *app) load(needLocal bool) error {
	a.handler = smx.NewHandler(nil)
	if err := a.handler.LoadGlobalConfig(a.globalConfig); err != nil {
		return err
	}

	if needLocal {
		if a.localConfig == "" && a.handler.GlobalFile().Config().Path == "" {
			return fmt.Errorf("no script folder configured, run 'smx init <path>' first")
		}
		if err := a.handler.LoadLocalConfig(a.localConfig); err != nil {
			return err
		}
	}

	a.settings = smx.NewManager(a.handler, smx.NewValidator(smx.DefaultDefinitions()...))
	a.editor = smx.NewEditorSettings(a.settings)
	a.git = smx.NewGitSettings(a.settings)

	target := a.target
	if target == "" && needLocal {
		target = smx.NewTargets(a.settings).Default()
	}
	a.handler.SetTargetID(target)

	return nil
}

// NewRootCommand builds the smx command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "smx",
		Short: "smx - script manager",
		Long: `smx keeps a folder of scripts and dotfiles in git and manages
per-machine and per-target settings for it.

Run 'smx init <path>' to choose the script folder of this machine.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.globalConfig, "global-config", "", "Global config file or folder (default ~/.smx.json)")
	rootCmd.PersistentFlags().StringVar(&a.localConfig, "local-config", "", "Local config file or folder (default from global config)")
	rootCmd.PersistentFlags().StringVarP(&a.target, "target", "t", "", "Active target (default targets.default)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("smx %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newSettingsCmd(a))
	rootCmd.AddCommand(newTargetCmd(a))
	rootCmd.AddCommand(newEditorCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
