package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"plume/internal/driver"
	"plume/internal/passes"
	"plume/internal/plugin"
	"plume/internal/project"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List registered plugins and their execution order",
	RunE:  runPlugins,
}

func init() {
	pluginsCmd.Flags().StringSlice("disable", nil, "plugins to treat as disabled")
}

func runPlugins(cmd *cobra.Command, args []string) error {
	var disabled []string
	if manifest, ok, err := project.Load("."); err != nil {
		return err
	} else if ok {
		disabled = append(disabled, manifest.Config.Plugins.Disabled...)
	}
	flagDisable, _ := cmd.Flags().GetStringSlice("disable")
	disabled = append(disabled, flagDisable...)

	reg := plugin.NewRegistry()
	if err := passes.RegisterBuiltins(reg); err != nil {
		return err
	}
	for _, name := range disabled {
		if err := reg.Enable(name, false); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tENABLED\tDEPENDS ON\tDESCRIPTION")
	for _, s := range reg.Summaries() {
		deps := "-"
		if len(s.Dependencies) > 0 {
			deps = strings.Join(s.Dependencies, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%s\n", s.Name, s.Version, s.Enabled, deps, s.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	order, err := driver.PlannedOrder(driver.Options{Disabled: disabled})
	if err != nil {
		return err
	}
	fmt.Printf("\nexecution order: %s\n", strings.Join(order, " -> "))
	return nil
}
