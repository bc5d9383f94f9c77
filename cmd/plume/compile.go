package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"plume/internal/driver"
	"plume/internal/observ"
	"plume/internal/prof"
	"plume/internal/project"
	"plume/internal/source"
	"plume/internal/ui"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file.plm|dir",
	Short: "Compile a plume source file through the plugin pipeline",
	Long: `Compile runs the full pipeline over a source file and writes the generated
artifacts (three-address code, C, Python, reports) to the output directory.
Given a directory, every *.plm file in it is compiled in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringSlice("emit", nil, "output keys to write (default: all)")
	compileCmd.Flags().String("out", "", "output directory (default: <file>_out or [output].dir from plume.toml)")
	compileCmd.Flags().StringSlice("disable", nil, "plugins to disable for this run")
	compileCmd.Flags().Bool("ui", false, "interactive progress display")
	compileCmd.Flags().Bool("no-cache", false, "bypass the artifact cache")
	compileCmd.Flags().Int("jobs", 0, "parallel workers for directory compilation (0 = GOMAXPROCS)")
	compileCmd.Flags().String("cpuprofile", "", "write a CPU profile to the given file")
	compileCmd.Flags().String("memprofile", "", "write a heap profile to the given file")
	compileCmd.Flags().String("trace", "", "write a runtime trace to the given file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]

	cpu, _ := cmd.Flags().GetString("cpuprofile")
	mem, _ := cmd.Flags().GetString("memprofile")
	tr, _ := cmd.Flags().GetString("trace")
	sess, err := prof.Start(prof.Options{CPU: cpu, Mem: mem, Trace: tr})
	if err != nil {
		return fmt.Errorf("profiling: %w", err)
	}
	defer func() {
		if err := sess.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	}()

	opts := driver.Options{MaxDiagnostics: maxDiagnostics(cmd)}
	disable, _ := cmd.Flags().GetStringSlice("disable")

	// Манифест добавляет выключенные плагины и каталог вывода.
	manifest, _, err := project.Load(manifestStartDir(path))
	if err != nil {
		return err
	}
	if manifest != nil {
		opts.Disabled = append(opts.Disabled, manifest.Config.Plugins.Disabled...)
	}
	opts.Disabled = append(opts.Disabled, disable...)

	want := map[string]bool{}
	emit, _ := cmd.Flags().GetStringSlice("emit")
	for _, key := range emit {
		want[key] = true
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		jobs, _ := cmd.Flags().GetInt("jobs")
		return compileDirectory(cmd, path, opts, jobs, want, manifest)
	}
	return compileOne(cmd, path, opts, want, manifest)
}

func manifestStartDir(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

func compileOne(cmd *cobra.Command, path string, opts driver.Options, want map[string]bool, manifest *project.Manifest) error {
	fset, id, err := loadSource(path)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)

	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = manifest.OutputDir(abs)
	}

	order, err := driver.PlannedOrder(opts)
	if err != nil {
		return err
	}

	noCache, _ := cmd.Flags().GetBool("no-cache")
	var cache *driver.DiskCache
	var key driver.Digest
	if !noCache {
		cache, err = driver.OpenDiskCache("plume")
		if err != nil {
			// Кэш — ускорение, не требование.
			cache = nil
		}
		key = driver.CacheKey(fset.Get(id).Content, order)
		if payload, hit, err := cache.Get(key); err == nil && hit {
			written, err := writeOutputs(outDir, sourceBase(abs), payload.Outputs, want)
			if err != nil {
				return err
			}
			reportWritten(cmd, written, true)
			return nil
		}
	}

	var timer *observ.Timer
	if showTimings(cmd) {
		timer = observ.NewTimer()
		opts.Timer = timer
	}

	var res *driver.Result
	useUI, _ := cmd.Flags().GetBool("ui")
	if useUI && isTerminal(os.Stdout) {
		res, err = compileWithUI(cmd, fset, id, opts, order, filepath.Base(abs))
	} else {
		res, err = driver.Compile(cmd.Context(), fset, id, opts)
	}
	if err != nil {
		return err
	}

	printDiagnostics(cmd, res.Bag, fset)
	if timer != nil {
		fmt.Fprint(os.Stderr, timer.Summary())
	}
	if !res.Success {
		return errors.New("compilation failed")
	}

	outputs := res.Context.Outputs()
	written, err := writeOutputs(outDir, sourceBase(abs), outputs, want)
	if err != nil {
		return err
	}
	reportWritten(cmd, written, false)

	// Кэшируем только полностью чистые прогоны: диагностики из кэша не
	// воспроизводятся.
	if cache != nil && res.Bag.Len() == 0 {
		_ = cache.Put(key, driver.NewPayload(abs, res.Order, outputs))
	}
	return nil
}

// compileWithUI runs the compilation in a goroutine and feeds its progress
// events into a Bubble Tea view until the pipeline finishes.
func compileWithUI(cmd *cobra.Command, fset *source.FileSet, id source.FileID, opts driver.Options, order []string, title string) (*driver.Result, error) {
	events := make(ui.ChannelSink, 16)
	opts.Progress = events

	var (
		res  *driver.Result
		cerr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(events)
		res, cerr = driver.Compile(cmd.Context(), fset, id, opts)
	}()

	model := ui.NewProgressModel(title, order, events)
	if _, err := tea.NewProgram(model).Run(); err != nil {
		<-done
		if cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	<-done
	return res, cerr
}

func compileDirectory(cmd *cobra.Command, dir string, opts driver.Options, jobs int, want map[string]bool, manifest *project.Manifest) error {
	fset, results, err := driver.CompileDir(cmd.Context(), dir, opts, jobs)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		if !quiet(cmd) {
			fmt.Fprintf(os.Stderr, "no %s files under %s\n", driver.SourceExt, dir)
		}
		return nil
	}

	failed := 0
	for _, fr := range results {
		if fr.Result == nil {
			continue
		}
		printDiagnostics(cmd, fr.Result.Bag, fset)
		if !fr.Result.Success {
			failed++
			continue
		}
		outDir := manifest.OutputDir(fr.Path)
		written, err := writeOutputs(outDir, sourceBase(fr.Path), fr.Result.Context.Outputs(), want)
		if err != nil {
			return err
		}
		reportWritten(cmd, written, false)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

func reportWritten(cmd *cobra.Command, written []string, cached bool) {
	if quiet(cmd) {
		return
	}
	for _, path := range written {
		if cached {
			fmt.Printf("wrote %s (cached)\n", path)
		} else {
			fmt.Printf("wrote %s\n", path)
		}
	}
}
