package plugin

import (
	"fmt"
	"sort"
)

// Context is the shared mutable state of one compilation: named generated
// output texts and named structured plugin results. It is created empty per
// compilation and must never be reused across compilations.
type Context struct {
	outputs map[string]string
	results map[string]any
	owners  map[string]string // output key -> plugin that wrote it
}

func NewContext() *Context {
	return &Context{
		outputs: make(map[string]string),
		results: make(map[string]any),
		owners:  make(map[string]string),
	}
}

// AddOutput publishes generated text under key. Overwriting a key another
// plugin owns is refused; overwriting your own key is allowed (a plugin may
// build its output incrementally).
func (c *Context) AddOutput(owner, key, text string) error {
	if prev, ok := c.owners[key]; ok && prev != owner {
		return fmt.Errorf("output %q already written by plugin %q", key, prev)
	}
	c.outputs[key] = text
	c.owners[key] = owner
	return nil
}

// Output returns the generated text stored under key.
func (c *Context) Output(key string) (string, bool) {
	text, ok := c.outputs[key]
	return text, ok
}

// OutputKeys returns all published output keys in sorted order.
func (c *Context) OutputKeys() []string {
	keys := make([]string, 0, len(c.outputs))
	for k := range c.outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Outputs returns a copy of all generated outputs.
func (c *Context) Outputs() map[string]string {
	out := make(map[string]string, len(c.outputs))
	for k, v := range c.outputs {
		out[k] = v
	}
	return out
}

// Result returns the structured record a plugin stored.
func (c *Context) Result(name string) (any, bool) {
	res, ok := c.results[name]
	return res, ok
}

// ResultNames returns the names of all stored results in sorted order.
func (c *Context) ResultNames() []string {
	names := make([]string, 0, len(c.results))
	for k := range c.results {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// setResult записывает результат плагина. Только для реестра.
func (c *Context) setResult(name string, res any) {
	c.results[name] = res
}
