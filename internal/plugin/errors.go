package plugin

import (
	"fmt"
	"strings"
)

// DuplicateNameError is returned by Register when a plugin with the same
// name already exists.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("plugin %q is already registered", e.Name)
}

// UnknownPluginError is returned when an operation names an unregistered
// plugin.
type UnknownPluginError struct {
	Name string
}

func (e *UnknownPluginError) Error() string {
	return fmt.Sprintf("plugin %q is not registered", e.Name)
}

// UnresolvedDependencyError is a fatal configuration error: a registered
// plugin depends on a name that is not registered.
type UnresolvedDependencyError struct {
	Plugin     string
	Dependency string
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("plugin %q depends on unregistered plugin %q", e.Plugin, e.Dependency)
}

// CycleError is a fatal configuration error: the dependency graph of the
// enabled plugins contains a cycle. Names lists the members of the cycle in
// registration order.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between plugins: %s", strings.Join(e.Names, ", "))
}

// RuntimeError wraps an error or recovered panic raised inside a plugin's
// Run. It is isolated to the plugin and its transitive dependents.
type RuntimeError struct {
	Plugin string
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("plugin %q failed: %v", e.Plugin, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
