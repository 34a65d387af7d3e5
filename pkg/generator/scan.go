package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-templateer/pkg/template"
)

// moduleRef is one discovered template file, not yet loaded.
type moduleRef struct {
	name   string
	path   string
	source template.Source
}

// discover enumerates template modules in the source directory, one file per
// module, sorted by module name so runs are deterministic regardless of
// directory iteration order.
func (g *Generator) discover() ([]moduleRef, error) {
	dir := g.settings.TemplateDir

	var entries []fs.DirEntry
	var err error
	if g.fsys != nil {
		entries, err = fs.ReadDir(g.fsys, dir)
	} else {
		entries, err = os.ReadDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("generator: read template dir %s: %w", dir, err)
	}

	refs := make([]moduleRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), g.extension) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src := template.SourceFromFile(path)
		if g.fsys != nil {
			path = dir + "/" + entry.Name()
			src = template.SourceFromFS(path)
		}
		refs = append(refs, moduleRef{
			name:   template.ModuleName(entry.Name()),
			path:   path,
			source: src,
		})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].name < refs[j].name })
	return refs, nil
}

// loadModule reads the template text and wraps it in a Module. A blank file
// surfaces template.ErrEmptyTemplate, fatal for that module only.
func (g *Generator) loadModule(ref moduleRef) (template.Module, error) {
	var data []byte
	var err error
	if g.fsys != nil {
		data, err = fs.ReadFile(g.fsys, ref.path)
	} else {
		data, err = os.ReadFile(ref.path)
	}
	if err != nil {
		return template.Module{}, fmt.Errorf("read template: %w", err)
	}
	return template.NewModule(ref.name, string(data), ref.source)
}
