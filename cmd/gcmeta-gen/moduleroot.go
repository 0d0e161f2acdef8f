package main

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// findModule walks upward from dir looking for a go.mod, the same
// module-root discovery cmd/sigoc's build pipeline performs implicitly
// by shelling out to the go tool; gcmeta-gen does it directly with
// golang.org/x/mod/modfile since it never invokes the go command
// itself. The returned module path is recorded in the emitted table's
// function names' package qualifier context, not substituted into
// them — ssa.Function.String() already returns fully qualified names.
func findModule(dir string) (root, modulePath string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}

	for cur := abs; ; {
		path := filepath.Join(cur, "go.mod")
		b, err := os.ReadFile(path)
		if err == nil {
			f, err := modfile.Parse(path, b, nil)
			if err != nil {
				return "", "", fmt.Errorf("gcmeta-gen: parse %s: %w", path, err)
			}
			if f.Module == nil {
				return "", "", fmt.Errorf("gcmeta-gen: %s has no module directive", path)
			}
			return cur, f.Module.Mod.Path, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", "", fmt.Errorf("gcmeta-gen: no go.mod found above %s", abs)
		}
		cur = parent
	}
}
