// Package workspace discovers Go modules in a repository and orders them
// for tagging and publishing.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// Module describes a single Go module inside the repository
type Module struct {
	// Path is the module path from the go.mod module directive
	Path string
	// Dir is the module directory relative to the repository root,
	// "." for the root module
	Dir string
	// GoModPath is the absolute path of the go.mod file
	GoModPath string
	// Requires lists all required module paths
	Requires []string
	// InternalDeps lists required modules that live in this workspace
	InternalDeps []string
}

// Workspace holds all modules of a repository
type Workspace struct {
	// Root is the repository root directory
	Root string
	// Modules keyed by module path
	Modules map[string]*Module
}

// dirs skipped during go.mod discovery
var skipDirs = map[string]bool{
	"vendor":       true,
	"testdata":     true,
	"node_modules": true,
}

// Discover walks the repository for go.mod files and builds a Workspace.
// Vendored trees, testdata, and dot-directories are skipped.
func Discover(root string) (*Workspace, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	ws := &Workspace{
		Root:    absRoot,
		Modules: make(map[string]*Module),
	}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != absRoot && (skipDirs[name] || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "go.mod" {
			return nil
		}

		mod, err := parseModule(absRoot, path)
		if err != nil {
			return err
		}
		if existing, ok := ws.Modules[mod.Path]; ok {
			return fmt.Errorf("module %s declared in both %s and %s", mod.Path, existing.GoModPath, mod.GoModPath)
		}
		ws.Modules[mod.Path] = mod
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover modules: %w", err)
	}

	if len(ws.Modules) == 0 {
		return nil, fmt.Errorf("no go.mod found under %s", absRoot)
	}

	ws.resolveInternalDeps()
	return ws, nil
}

func parseModule(root, goModPath string) (*Module, error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", goModPath, err)
	}

	file, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", goModPath, err)
	}
	if file.Module == nil {
		return nil, fmt.Errorf("%s has no module directive", goModPath)
	}

	dir, err := filepath.Rel(root, filepath.Dir(goModPath))
	if err != nil {
		return nil, fmt.Errorf("failed to relativize %s: %w", goModPath, err)
	}

	requires := make([]string, 0, len(file.Require))
	for _, req := range file.Require {
		requires = append(requires, req.Mod.Path)
	}

	return &Module{
		Path:      file.Module.Mod.Path,
		Dir:       filepath.ToSlash(dir),
		GoModPath: goModPath,
		Requires:  requires,
	}, nil
}

// resolveInternalDeps fills InternalDeps with requires that point at
// workspace members
func (w *Workspace) resolveInternalDeps() {
	for _, mod := range w.Modules {
		for _, req := range mod.Requires {
			if _, ok := w.Modules[req]; ok {
				mod.InternalDeps = append(mod.InternalDeps, req)
			}
		}
		sort.Strings(mod.InternalDeps)
	}
}

// RootModule returns the module at the repository root, or nil if the root
// directory itself carries no go.mod
func (w *Workspace) RootModule() *Module {
	for _, mod := range w.Modules {
		if mod.Dir == "." {
			return mod
		}
	}
	return nil
}

// ModulePaths returns all module paths, sorted
func (w *Workspace) ModulePaths() []string {
	paths := make([]string, 0, len(w.Modules))
	for path := range w.Modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
