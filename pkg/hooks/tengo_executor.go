package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptModules are the Tengo standard library modules importable by hooks.
var ScriptModules = []string{"fmt", "os", "text", "times", "json"}

// TengoExecutor handles the execution of Tengo scripts.
type TengoExecutor struct {
	scripts map[HookType]string
	mutex   sync.RWMutex
}

// NewTengoExecutor creates a new Tengo script executor.
func NewTengoExecutor() *TengoExecutor {
	return &TengoExecutor{
		scripts: make(map[HookType]string),
	}
}

// Execute runs the specified hooks type with the given context.
// A script fails the hook by assigning a non-empty string or an error value
// to the predeclared err variable.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, hookCtx HookContext) error {
	e.mutex.RLock()
	script, exists := e.scripts[hookType]
	e.mutex.RUnlock()
	if !exists {
		return nil // No script for this hooks type
	}

	scriptInstance := tengo.NewScript([]byte(script))
	scriptInstance.SetImports(stdlib.GetModuleMap(ScriptModules...))

	for name, value := range scriptVars(hookCtx) {
		if err := scriptInstance.Add(name, value); err != nil {
			return fmt.Errorf("failed to add %s to script: %w", name, err)
		}
	}

	compiled, err := scriptInstance.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookExecution, err)
	}

	errVar := compiled.Get("err")
	if errVar != nil {
		switch v := errVar.Object().(type) {
		case *tengo.Error:
			msg, _ := tengo.ToString(v.Value)
			return fmt.Errorf("%s: %w: %s", hookType, ErrHookScript, msg)
		case *tengo.String:
			if v.Value != "" {
				return fmt.Errorf("%s: %w: %s", hookType, ErrHookScript, v.Value)
			}
		}
	}

	return nil
}

// scriptVars flattens hookCtx into Tengo-compatible values. Custom variables
// cannot shadow the built-in ones.
func scriptVars(hookCtx HookContext) map[string]interface{} {
	vars := make(map[string]interface{}, len(hookCtx.Vars)+8)
	for k, v := range hookCtx.Vars {
		vars[k] = v
	}

	majors := make([]interface{}, len(hookCtx.MajorVersions))
	for i, m := range hookCtx.MajorVersions {
		majors[i] = m
	}
	packages := make(map[string]interface{}, len(hookCtx.Packages))
	for name, latest := range hookCtx.Packages {
		packages[name] = latest
	}

	vars["packagesDir"] = hookCtx.PackagesDir
	vars["outputDir"] = hookCtx.OutputDir
	vars["baseURL"] = hookCtx.BaseURL
	vars["majorVersions"] = majors
	vars["packageCount"] = hookCtx.PackageCount
	vars["versionCount"] = hookCtx.VersionCount
	vars["packages"] = packages
	vars["err"] = ""
	return vars
}

// AddScript adds or updates a script for the specified hooks type.
func (e *TengoExecutor) AddScript(hookType HookType, script string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.scripts[hookType] = script
}

// RemoveScript removes the script for the specified hooks type.
func (e *TengoExecutor) RemoveScript(hookType HookType) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.scripts, hookType)
}

// HasScript checks if a script exists for the specified hooks type.
func (e *TengoExecutor) HasScript(hookType HookType) bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	_, exists := e.scripts[hookType]
	return exists
}

// ScriptTypes returns the hook types with a script, sorted.
func (e *TengoExecutor) ScriptTypes() []HookType {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	types := make([]HookType, 0, len(e.scripts))
	for t := range e.scripts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
