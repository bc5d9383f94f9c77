package plugin

import (
	"context"
	"fmt"
	"time"

	"plume/internal/ast"
	"plume/internal/diag"
	"plume/internal/observ"
	"plume/internal/source"
)

// registrySource is the diagnostics source name of the registry itself.
const registrySource = "registry"

type runState uint8

const (
	stateOK runState = iota
	stateFailed
	stateSkipped
)

func noSpan() source.Span {
	return source.Span{}
}

type entry struct {
	plugin  Plugin
	info    Info
	enabled bool
	seq     int
}

// Registry owns the registered plugins of one compilation session and
// drives their sequential execution.
//
// A Registry must be constructed fresh per compilation (or at least per
// independent session): enabled flags and the cached order are session
// state and must not leak between unrelated compilations.
type Registry struct {
	entries []*entry
	byName  map[string]*entry
	order   []string
	stale   bool

	// Progress, when set, receives per-plugin status events during RunAll.
	Progress ProgressSink
	// Timer, when set, records one phase per executed plugin.
	Timer *observ.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*entry),
		stale:  true,
	}
}

// Register adds a plugin. Names are unique within a registry; registering a
// duplicate name fails. Plugins start enabled.
func (r *Registry) Register(p Plugin) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("plugin has empty name")
	}
	if _, exists := r.byName[info.Name]; exists {
		return &DuplicateNameError{Name: info.Name}
	}
	e := &entry{
		plugin:  p,
		info:    info,
		enabled: true,
		seq:     len(r.entries),
	}
	r.entries = append(r.entries, e)
	r.byName[info.Name] = e
	r.stale = true
	return nil
}

// Enable toggles a plugin and invalidates the cached execution order.
func (r *Registry) Enable(name string, enabled bool) error {
	e, ok := r.byName[name]
	if !ok {
		return &UnknownPluginError{Name: name}
	}
	e.enabled = enabled
	r.stale = true
	return nil
}

// Summaries returns every registered plugin in registration order, for host
// tooling such as "list plugins".
func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, Summary{Info: e.info, Enabled: e.enabled})
	}
	return out
}

// ResolveOrder computes (and caches) the execution order: a topological
// sort of the dependency graph restricted to enabled plugins. When several
// plugins are simultaneously eligible the one registered earliest goes
// first, so identical registration sequences reproduce identical orders.
//
// Dependency names must resolve to registered plugins, enabled or not; a
// disabled dependency satisfies ordering and is handled at run time by the
// cascading-skip rule.
func (r *Registry) ResolveOrder() ([]string, error) {
	if !r.stale {
		return r.order, nil
	}

	// Проверяем разрешимость зависимостей по всем плагинам, включая
	// выключенные: это ошибка конфигурации, а не состояния запуска.
	for _, e := range r.entries {
		for _, dep := range e.info.Dependencies {
			if _, ok := r.byName[dep]; !ok {
				return nil, &UnresolvedDependencyError{Plugin: e.info.Name, Dependency: dep}
			}
		}
	}

	indegree := make(map[string]int, len(r.entries))
	for _, e := range r.entries {
		if !e.enabled {
			continue
		}
		count := 0
		for _, dep := range e.info.Dependencies {
			if r.byName[dep].enabled {
				count++
			}
		}
		indegree[e.info.Name] = count
	}

	order := make([]string, 0, len(indegree))
	emitted := make(map[string]bool, len(indegree))
	for len(order) < len(indegree) {
		progressed := false
		// Kahn с tie-break по порядку регистрации: на каждом шаге берём
		// самый ранний плагин с нулевой входящей степенью.
		for _, e := range r.entries {
			name := e.info.Name
			if !e.enabled || emitted[name] || indegree[name] != 0 {
				continue
			}
			order = append(order, name)
			emitted[name] = true
			progressed = true
			for _, other := range r.entries {
				if !other.enabled || emitted[other.info.Name] {
					continue
				}
				for _, dep := range other.info.Dependencies {
					if dep == name {
						indegree[other.info.Name]--
					}
				}
			}
			break
		}
		if !progressed {
			var cycle []string
			for _, e := range r.entries {
				if e.enabled && !emitted[e.info.Name] {
					cycle = append(cycle, e.info.Name)
				}
			}
			return nil, &CycleError{Names: cycle}
		}
	}

	r.order = order
	r.stale = false
	return order, nil
}

// RunAll validates the tree, resolves the execution order and runs every
// enabled plugin in that order.
//
// Failure isolation: an error or panic inside one plugin is recorded as an
// error diagnostic and marks the plugin failed; its transitive dependents
// are skipped with a warning naming both sides, and the pipeline continues
// for unaffected plugins. Fatal conditions — a malformed tree or an
// unresolvable dependency graph — abort before any plugin runs and are
// returned as an error.
//
// ctx is checked between plugins only; a running plugin is never
// interrupted.
func (r *Registry) RunAll(ctx context.Context, prog *ast.Program, pctx *Context, bag *diag.Bag) error {
	if err := ast.Validate(prog); err != nil {
		return err
	}
	order, err := r.ResolveOrder()
	if err != nil {
		return err
	}

	states := make(map[string]runState, len(order))

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before plugin %q: %w", name, err)
		}
		e := r.byName[name]

		if blockedBy, reason, blocked := r.blockingDependency(e, states); blocked {
			bag.Warning(
				fmt.Sprintf("skipping plugin %q: dependency %q %s", name, blockedBy, reason),
				registrySource, noSpan(),
			)
			states[name] = stateSkipped
			r.emit(Event{Plugin: name, Status: StatusSkipped})
			continue
		}

		r.emit(Event{Plugin: name, Status: StatusWorking})
		phase := -1
		if r.Timer != nil {
			phase = r.Timer.Begin(name)
		}
		start := time.Now()
		result, runErr := r.invoke(e, prog, pctx, bag)
		elapsed := time.Since(start)

		if runErr != nil {
			bag.Error(runErr.Error(), registrySource, noSpan())
			states[name] = stateFailed
			if r.Timer != nil {
				r.Timer.End(phase, string(StatusFailed))
			}
			r.emit(Event{Plugin: name, Status: StatusFailed, Err: runErr, Elapsed: elapsed})
			continue
		}

		if result != nil {
			pctx.setResult(name, result)
		}
		states[name] = stateOK
		if r.Timer != nil {
			r.Timer.End(phase, string(StatusDone))
		}
		r.emit(Event{Plugin: name, Status: StatusDone, Elapsed: elapsed})
	}
	return nil
}

// blockingDependency returns the first dependency that prevents e from
// running: a disabled dependency, or an enabled one that failed or was
// skipped earlier in this run.
func (r *Registry) blockingDependency(e *entry, states map[string]runState) (dep, reason string, blocked bool) {
	for _, depName := range e.info.Dependencies {
		depEntry := r.byName[depName]
		if !depEntry.enabled {
			return depName, "is disabled", true
		}
		switch states[depName] {
		case stateFailed:
			return depName, "failed", true
		case stateSkipped:
			return depName, "was skipped", true
		}
	}
	return "", "", false
}

// invoke runs one plugin inside the failure boundary, converting panics
// into RuntimeErrors.
func (r *Registry) invoke(e *entry, prog *ast.Program, pctx *Context, bag *diag.Bag) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &RuntimeError{Plugin: e.info.Name, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	result, runErr := e.plugin.Run(prog, pctx, bag)
	if runErr != nil {
		return nil, &RuntimeError{Plugin: e.info.Name, Err: runErr}
	}
	return result, nil
}

func (r *Registry) emit(ev Event) {
	if r.Progress != nil {
		r.Progress.OnEvent(ev)
	}
}
