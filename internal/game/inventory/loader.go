package inventory

import (
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

// validator is implemented by every YAML-backed definition in this package.
type validator interface {
	Validate() error
}

// loadDir reads every *.yaml and *.yml file directly under dir in fsys,
// decodes each into a fresh T, and validates it.
//
// Precondition: dir names a readable directory within fsys.
// Postcondition: returns all valid definitions in file-name order, or the
// first read, parse, or validation error.
func loadDir[T any, PT interface {
	*T
	validator
}](fsys fs.FS, dir, what string) ([]*T, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: cannot read directory %q: %w", what, dir, err)
	}

	var out []*T
	for _, entry := range entries {
		ext := path.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: cannot read file %q: %w", what, p, err)
		}
		v := new(T)
		if err := yaml.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("loading %s: cannot parse file %q: %w", what, p, err)
		}
		if err := PT(v).Validate(); err != nil {
			return nil, fmt.Errorf("loading %s: invalid definition in %q: %w", what, p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
