package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plume/internal/diagfmt"
	"plume/internal/driver"
	"plume/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] file.plm",
	Short: "Run the pipeline without writing artifacts",
	Long:  `Check compiles the file and reports diagnostics, discarding all generated outputs.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "diagnostics format (text|json)")
	checkCmd.Flags().StringSlice("disable", nil, "plugins to disable for this run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	fset, id, err := loadSource(path)
	if err != nil {
		return err
	}

	opts := driver.Options{MaxDiagnostics: maxDiagnostics(cmd)}
	if manifest, ok, err := project.Load(manifestStartDir(path)); err != nil {
		return err
	} else if ok {
		opts.Disabled = append(opts.Disabled, manifest.Config.Plugins.Disabled...)
	}
	disable, _ := cmd.Flags().GetStringSlice("disable")
	opts.Disabled = append(opts.Disabled, disable...)

	res, err := driver.Compile(cmd.Context(), fset, id, opts)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		res.Bag.Sort()
		if err := diagfmt.JSON(os.Stdout, res.Bag, fset, diagfmt.JSONOpts{}); err != nil {
			return err
		}
	default:
		printDiagnostics(cmd, res.Bag, fset)
		if res.Success && !quiet(cmd) {
			fmt.Println("ok")
		}
	}

	if !res.Success {
		return errors.New("check failed")
	}
	return nil
}
