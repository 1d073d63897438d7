// Package catalog keeps the named tables a planning session can scan: each
// table is a schema plus, optionally, a materialized in-memory frame. The
// registry is safe for concurrent use; persistence is a single JSON blob
// behind the PersistenceProvider interface, so embedders decide where state
// lives (a file on disk, a test double, nothing at all).
package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

// Table is the unit of registration: a name, the schema plans are checked
// against, and an optional materialized frame. A table without a frame can
// still anchor templates; binding supplies the data later.
type Table struct {
	Name   string           `json:"name"`
	Schema *frame.Schema    `json:"schema"`
	Frame  *frame.DataFrame `json:"frame,omitempty"`
}

// Materialized reports whether the table carries in-memory data.
func (t *Table) Materialized() bool {
	return t.Frame != nil
}

func (t *Table) String() string {
	b, _ := json.MarshalIndent(t, "", "  ")
	return string(b)
}

// PersistenceProvider abstracts how catalog state is saved and loaded.
// LoadCatalogState returns os.ErrNotExist when no state has been saved yet.
type PersistenceProvider interface {
	LoadCatalogState() (json string, err error)
	SaveCatalogState(json string) error
}

// Catalog is the concurrent table registry. Mutations persist the full
// state through the provider they are handed; lookups never touch the
// provider.
type Catalog struct {
	tables *xsync.MapOf[string, *Table]
}

type catalogState struct {
	Tables []*Table `json:"tables"`
}

// NewCatalog initializes a catalog from the provider's saved state; if no
// state exists yet it starts empty.
func NewCatalog(provider PersistenceProvider) (*Catalog, error) {
	c := &Catalog{tables: xsync.NewMapOf[string, *Table]()}

	jsonData, err := provider.LoadCatalogState()
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	if err := c.fromJSON(jsonData); err != nil {
		return nil, err
	}
	return c, nil
}

// AddTable registers a schema-only table and persists the updated state.
// A name that is already taken returns DuplicateObjectError.
func (c *Catalog) AddTable(name string, schema *frame.Schema, provider PersistenceProvider) (*Table, error) {
	common.Assert(schema != nil, "table %q requires a schema", name)
	return c.add(&Table{Name: name, Schema: schema}, provider)
}

// AddMaterializedTable registers a table backed by an in-memory frame. The
// frame is referenced, not copied, and must not be mutated afterwards.
func (c *Catalog) AddMaterializedTable(name string, df *frame.DataFrame, provider PersistenceProvider) (*Table, error) {
	common.Assert(df != nil, "table %q requires a frame", name)
	return c.add(&Table{Name: name, Schema: df.Schema(), Frame: df}, provider)
}

func (c *Catalog) add(t *Table, provider PersistenceProvider) (*Table, error) {
	if _, loaded := c.tables.LoadOrStore(t.Name, t); loaded {
		return nil, common.Errorf(common.DuplicateObjectError,
			"table %q already exists", t.Name)
	}
	jsonData, err := c.toJSON()
	if err != nil {
		return nil, err
	}
	return t, provider.SaveCatalogState(jsonData)
}

// GetTable fetches a table by name.
func (c *Catalog) GetTable(name string) (*Table, error) {
	t, ok := c.tables.Load(name)
	if !ok {
		return nil, common.Errorf(common.NoSuchObjectError,
			"table %q does not exist", name)
	}
	return t, nil
}

// DropTable removes a table and persists the updated state.
func (c *Catalog) DropTable(name string, provider PersistenceProvider) error {
	if _, ok := c.tables.LoadAndDelete(name); !ok {
		return common.Errorf(common.NoSuchObjectError,
			"table %q does not exist", name)
	}
	jsonData, err := c.toJSON()
	if err != nil {
		return err
	}
	return provider.SaveCatalogState(jsonData)
}

// Tables returns all registered tables sorted by name.
func (c *Catalog) Tables() []*Table {
	var tables []*Table
	c.tables.Range(func(_ string, t *Table) bool {
		tables = append(tables, t)
		return true
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

// FindTablesWithColumn returns the tables containing a column with the
// given name, sorted by table name. Used to resolve bare identifiers.
func (c *Catalog) FindTablesWithColumn(column string) []*Table {
	var tables []*Table
	c.tables.Range(func(_ string, t *Table) bool {
		if _, ok := t.Schema.Index(column); ok {
			tables = append(tables, t)
		}
		return true
	})
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

func (c *Catalog) String() string {
	b, _ := json.MarshalIndent(catalogState{Tables: c.Tables()}, "", "  ")
	return string(b)
}

func (c *Catalog) toJSON() (string, error) {
	b, err := json.MarshalIndent(catalogState{Tables: c.Tables()}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Catalog) fromJSON(jsonData string) error {
	var state catalogState
	if err := json.Unmarshal([]byte(jsonData), &state); err != nil {
		return common.Errorf(common.SerializeError,
			"parsing catalog state: %v", err)
	}
	for _, t := range state.Tables {
		if t.Schema == nil {
			return common.Errorf(common.SerializeError,
				"catalog table %q has no schema", t.Name)
		}
		if t.Frame != nil && !t.Frame.Schema().Equal(t.Schema) {
			return common.Errorf(common.SerializeError,
				"catalog table %q: frame schema %s does not match declared schema %s",
				t.Name, t.Frame.Schema(), t.Schema)
		}
		if _, loaded := c.tables.LoadOrStore(t.Name, t); loaded {
			return common.Errorf(common.SerializeError,
				"catalog state lists table %q twice", t.Name)
		}
	}
	return nil
}

const CatalogFileName = "catalog.json"

// DiskCatalogManager persists catalog state as a JSON file in a directory.
type DiskCatalogManager struct {
	rootPath string
}

func NewDiskCatalogManager(rootPath string) *DiskCatalogManager {
	return &DiskCatalogManager{rootPath: rootPath}
}

// LoadCatalogState implements the catalog.PersistenceProvider interface.
func (dcm *DiskCatalogManager) LoadCatalogState() (string, error) {
	path := filepath.Join(dcm.rootPath, CatalogFileName)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err // the caller handles os.ErrNotExist
	}
	return string(content), nil
}

// SaveCatalogState implements the catalog.PersistenceProvider interface.
// The write goes through a temporary file and a rename, so a crash cannot
// leave a half-written catalog behind.
func (dcm *DiskCatalogManager) SaveCatalogState(jsonData string) error {
	tmpPath := filepath.Join(dcm.rootPath, CatalogFileName+".tmp")
	finalPath := filepath.Join(dcm.rootPath, CatalogFileName)

	if err := os.WriteFile(tmpPath, []byte(jsonData), 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, finalPath)
}
