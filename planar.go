// Package planar builds, serializes, and rebinds logical query plans. The
// Session type wires the subsystems together over one workspace directory;
// the subpackages are usable on their own.
package planar

import (
	"os"
	"path/filepath"

	"github.com/planardb/planar/catalog"
	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
	"github.com/planardb/planar/lazy"
	"github.com/planardb/planar/plan"
	"github.com/planardb/planar/store"
)

// Session is the top-level container for a planar workspace: the table
// catalog, the template store, and the cache id allocator.
type Session struct {
	Catalog   *catalog.Catalog
	Templates *store.TemplateStore
	CacheIDs  plan.CacheIDAllocator

	provider catalog.PersistenceProvider
}

// NewSession opens the workspace rooted at dir, creating it if needed.
// Catalog state and saved templates survive across sessions on the same
// directory.
func NewSession(dir string) (*Session, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	provider := catalog.NewDiskCatalogManager(dir)
	cat, err := catalog.NewCatalog(provider)
	if err != nil {
		return nil, err
	}
	templates, err := store.NewTemplateStore(filepath.Join(dir, "templates"))
	if err != nil {
		return nil, err
	}

	return &Session{
		Catalog:   cat,
		Templates: templates,
		CacheIDs:  plan.RandomCacheIDs{},
		provider:  provider,
	}, nil
}

// CreateTable registers a schema-only table. Scans of it produce
// placeholder leaves for templates to bind later.
func (s *Session) CreateTable(name string, schema *frame.Schema) error {
	_, err := s.Catalog.AddTable(name, schema, s.provider)
	return err
}

// ImportFrame registers a table materialized by df.
func (s *Session) ImportFrame(name string, df *frame.DataFrame) error {
	_, err := s.Catalog.AddMaterializedTable(name, df, s.provider)
	return err
}

// DropTable removes the named table from the catalog.
func (s *Session) DropTable(name string) error {
	return s.Catalog.DropTable(name, s.provider)
}

// ScanTable starts a lazy pipeline over the named table. Materialized
// tables scan their frame; schema-only tables scan a placeholder.
func (s *Session) ScanTable(name string) (lazy.LazyFrame, error) {
	t, err := s.Catalog.GetTable(name)
	if err != nil {
		return lazy.LazyFrame{}, err
	}
	if t.Materialized() {
		return lazy.ScanFrame(t.Frame), nil
	}
	return lazy.ScanPlaceholder(t.Schema), nil
}

// SaveTemplate strips lf's embedded frames and stores the result under
// name in the template store.
func (s *Session) SaveTemplate(name string, lf lazy.LazyFrame) error {
	p, err := lf.Plan()
	if err != nil {
		return err
	}
	return s.Templates.Save(name, p)
}

// LoadTemplate resumes building on a stored template, placeholders left in
// place.
func (s *Session) LoadTemplate(name string) (lazy.LazyFrame, error) {
	p, err := s.Templates.Load(name)
	if err != nil {
		return lazy.LazyFrame{}, err
	}
	return lazy.FromPlan(p), nil
}

// BindTemplate loads a stored template and binds its placeholders to the
// named table, which must be materialized.
func (s *Session) BindTemplate(templateName, tableName string) (lazy.LazyFrame, error) {
	t, err := s.Catalog.GetTable(tableName)
	if err != nil {
		return lazy.LazyFrame{}, err
	}
	if !t.Materialized() {
		return lazy.LazyFrame{}, common.Errorf(common.InvalidBindTargetError,
			"table %q holds no frame to bind", tableName)
	}
	p, err := s.Templates.BindTo(templateName, t.Frame)
	if err != nil {
		return lazy.LazyFrame{}, err
	}
	return lazy.FromPlan(p), nil
}
