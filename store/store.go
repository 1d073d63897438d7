// Package store persists named plan templates as versioned binary files in
// a directory. Saving always strips in-memory data first, so stored files
// are self-contained templates that any process can load and bind to its
// own frames. An ordered in-memory index keeps listing cheap; the files
// stay the source of truth.
package store

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/btree"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/plan"
)

// TemplateExt is the extension of stored template files.
const TemplateExt = ".plnr"

type entry struct {
	name string
	path string
}

// TemplateStore is a directory of named templates plus a name-ordered
// index. The index is safe for concurrent use; concurrent Save calls for
// the same name race on the file system like any two writers would.
type TemplateStore struct {
	dir  string
	tree *btree.BTreeG[entry]
}

// NewTemplateStore opens a store rooted at dir, creating the directory if
// needed and indexing the template files already present.
func NewTemplateStore(dir string) (*TemplateStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	less := func(a, b entry) bool { return a.name < b.name }
	s := &TemplateStore{dir: dir, tree: btree.NewBTreeG(less)}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), TemplateExt) {
			continue
		}
		name, err := url.PathUnescape(strings.TrimSuffix(f.Name(), TemplateExt))
		if err != nil {
			continue // not a file this store wrote
		}
		s.tree.Set(entry{name: name, path: filepath.Join(dir, f.Name())})
	}
	return s, nil
}

func (s *TemplateStore) pathFor(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+TemplateExt)
}

// Save templates p and writes it under the given name. A name that is
// already taken returns DuplicateObjectError; use Delete first to replace.
func (s *TemplateStore) Save(name string, p plan.Plan) error {
	common.Assert(name != "", "template requires a name")
	if _, exists := s.tree.Get(entry{name: name}); exists {
		return common.Errorf(common.DuplicateObjectError,
			"template %q already exists", name)
	}

	path := s.pathFor(name)
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	if err := p.ToTemplate().WriteBinary(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	s.tree.Set(entry{name: name, path: path})
	return nil
}

// Load reads the named template back.
func (s *TemplateStore) Load(name string) (plan.Plan, error) {
	e, ok := s.tree.Get(entry{name: name})
	if !ok {
		return plan.Plan{}, common.Errorf(common.NoSuchObjectError,
			"template %q does not exist", name)
	}
	f, err := os.Open(e.path)
	if err != nil {
		return plan.Plan{}, err
	}
	defer f.Close()
	return plan.ReadBinary(f)
}

// BindTo loads the named template and binds every placeholder in it to df.
func (s *TemplateStore) BindTo(name string, df *frame.DataFrame) (plan.Plan, error) {
	p, err := s.Load(name)
	if err != nil {
		return plan.Plan{}, err
	}
	return p.BindToFrame(df)
}

// Delete removes the named template from the index and from disk.
func (s *TemplateStore) Delete(name string) error {
	e, ok := s.tree.Delete(entry{name: name})
	if !ok {
		return common.Errorf(common.NoSuchObjectError,
			"template %q does not exist", name)
	}
	return os.Remove(e.path)
}

// List returns the stored template names in ascending order.
func (s *TemplateStore) List() []string {
	names := make([]string, 0, s.tree.Len())
	s.tree.Scan(func(e entry) bool {
		names = append(names, e.name)
		return true
	})
	return names
}

// Len returns the number of stored templates.
func (s *TemplateStore) Len() int {
	return s.tree.Len()
}
