package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/smx-cli/smx"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the config files",
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the location of the config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(false); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "global: %s\n", a.handler.GlobalFile().Path())

			if a.localConfig != "" || a.handler.GlobalFile().Config().Path != "" {
				if err := a.handler.LoadLocalConfig(a.localConfig); err != nil {
					return err
				}
				fmt.Fprintf(out, "local: %s\n", a.handler.LocalFile().Path())
			}

			return nil
		},
	}

	var format, scopeName string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print a config document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := smx.ParseScope(scopeName)
			if err != nil {
				return err
			}

			var doc any
			switch scope {
			case smx.ScopeGlobal:
				if err := a.load(false); err != nil {
					return err
				}
				doc = a.handler.GlobalFile().Config()
			case smx.ScopeLocal, smx.ScopeAuto:
				if err := a.load(true); err != nil {
					return err
				}
				doc = a.handler.LocalFile().Config()
			default:
				return fmt.Errorf("%w: %s can not be shown", smx.ErrInvalidScope, scope)
			}

			return printDocument(cmd.OutOrStdout(), doc, format)
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json|yaml)")
	showCmd.Flags().StringVarP(&scopeName, "scope", "s", "local", "Config to show (global|local)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config files against their schema",
		Long: `Validate the config files against their schema. Files are checked as
stored on disk, before a broken file is replaced by the defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := smx.NewHandler(nil)
			out := cmd.OutOrStdout()

			globalPath := h.GlobalConfigPath(a.globalConfig).File()
			bad, err := report(out, globalPath, smx.CheckGlobal)
			if err != nil {
				return err
			}

			if err := a.load(false); err != nil {
				return err
			}

			localPath := a.localConfig
			if localPath == "" {
				localPath = a.handler.GlobalFile().Config().Path
			}
			if localPath != "" {
				if !strings.HasSuffix(strings.ToLower(localPath), ".json") {
					localPath = filepath.Join(localPath, smx.ConfigFileName)
				}
				badLocal, err := report(out, localPath, smx.CheckLocal)
				if err != nil {
					return err
				}
				bad += badLocal
			}

			if bad > 0 {
				return fmt.Errorf("%d problems found", bad)
			}

			return nil
		},
	}

	cmd.AddCommand(pathCmd, showCmd, checkCmd)

	return cmd
}

// report prints the problems of the file at path and returns their count.
// A missing file is not a problem, it is created on first use.
func report(w io.Writer, path string, check func(smx.Storage) ([]smx.Problem, error)) (int, error) {
	fh := smx.NewFileHandler(nil, path)
	if !fh.Exists() {
		fmt.Fprintf(w, "%s: not created yet\n", path)

		return 0, nil
	}

	problems, err := check(fh)
	if err != nil {
		return 0, err
	}

	if len(problems) == 0 {
		fmt.Fprintf(w, "%s: ok\n", path)

		return 0, nil
	}

	for _, p := range problems {
		fmt.Fprintf(w, "%s: %s\n", path, p)
	}

	return len(problems), nil
}

func printDocument(w io.Writer, doc any, format string) error {
	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	switch format {
	case "json":
		_, err := fmt.Fprintln(w, string(buf))

		return err
	case "yaml":
		var m map[string]any
		if err := json.Unmarshal(buf, &m); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(buf)
}
