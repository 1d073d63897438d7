package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planardb/planar/common"
	"github.com/planardb/planar/frame"
)

// memoryProvider keeps catalog state in memory, for tests.
type memoryProvider struct {
	mu    sync.Mutex
	state string
	saves int
}

func (m *memoryProvider) LoadCatalogState() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return "", os.ErrNotExist
	}
	return m.state, nil
}

func (m *memoryProvider) SaveCatalogState(jsonData string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = jsonData
	m.saves++
	return nil
}

func usersSchema() *frame.Schema {
	return frame.NewSchema([]frame.Field{
		{Name: "id", Type: common.Int64Type},
		{Name: "name", Type: common.StringType},
	})
}

func usersFrame(t *testing.T) *frame.DataFrame {
	t.Helper()
	df := frame.NewDataFrame(usersSchema())
	require.NoError(t, df.AppendRow(common.NewInt64Value(1), common.NewStringValue("ada")))
	require.NoError(t, df.AppendRow(common.NewInt64Value(2), common.NewStringValue("grace")))
	return df
}

func TestNewCatalogStartsEmpty(t *testing.T) {
	c, err := NewCatalog(&memoryProvider{})
	require.NoError(t, err)
	assert.Empty(t, c.Tables())
}

func TestAddAndGetTable(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	schema := usersSchema()
	table, err := c.AddTable("users", schema, provider)
	require.NoError(t, err)
	assert.Same(t, schema, table.Schema)
	assert.False(t, table.Materialized())
	assert.Equal(t, 1, provider.saves)

	got, err := c.GetTable("users")
	require.NoError(t, err)
	assert.Same(t, table, got)

	_, err = c.AddTable("users", schema, provider)
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.DuplicateObjectError, code)
}

func TestGetTableMissing(t *testing.T) {
	c, err := NewCatalog(&memoryProvider{})
	require.NoError(t, err)

	_, err = c.GetTable("nope")
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.NoSuchObjectError, code)
}

func TestAddMaterializedTable(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	df := usersFrame(t)
	table, err := c.AddMaterializedTable("users", df, provider)
	require.NoError(t, err)
	assert.Same(t, df, table.Frame)
	assert.Same(t, df.Schema(), table.Schema)
	assert.True(t, table.Materialized())
}

func TestDropTable(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	_, err = c.AddTable("users", usersSchema(), provider)
	require.NoError(t, err)
	require.NoError(t, c.DropTable("users", provider))

	_, err = c.GetTable("users")
	require.Error(t, err)

	err = c.DropTable("users", provider)
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.NoSuchObjectError, code)
}

func TestCatalogPersistsAcrossRestarts(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	df := usersFrame(t)
	_, err = c.AddMaterializedTable("users", df, provider)
	require.NoError(t, err)
	_, err = c.AddTable("orders", frame.NewSchema([]frame.Field{
		{Name: "id", Type: common.Int64Type},
		{Name: "amount", Type: common.Float64Type},
	}), provider)
	require.NoError(t, err)

	reloaded, err := NewCatalog(provider)
	require.NoError(t, err)
	require.Len(t, reloaded.Tables(), 2)

	users, err := reloaded.GetTable("users")
	require.NoError(t, err)
	assert.True(t, users.Schema.Equal(df.Schema()))
	require.True(t, users.Materialized())
	assert.True(t, users.Frame.Equal(df))

	orders, err := reloaded.GetTable("orders")
	require.NoError(t, err)
	assert.False(t, orders.Materialized())
}

func TestTablesSortedByName(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := c.AddTable(name, usersSchema(), provider)
		require.NoError(t, err)
	}

	var names []string
	for _, table := range c.Tables() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestFindTablesWithColumn(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	_, err = c.AddTable("users", usersSchema(), provider)
	require.NoError(t, err)
	_, err = c.AddTable("orders", frame.NewSchema([]frame.Field{
		{Name: "id", Type: common.Int64Type},
		{Name: "amount", Type: common.Int64Type},
	}), provider)
	require.NoError(t, err)

	withID := c.FindTablesWithColumn("id")
	require.Len(t, withID, 2)
	assert.Equal(t, "orders", withID[0].Name)
	assert.Equal(t, "users", withID[1].Name)

	withName := c.FindTablesWithColumn("name")
	require.Len(t, withName, 1)
	assert.Equal(t, "users", withName[0].Name)

	assert.Empty(t, c.FindTablesWithColumn("missing"))
}

func TestNewCatalogRejectsCorruptState(t *testing.T) {
	_, err := NewCatalog(&memoryProvider{state: "not json"})
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.SerializeError, code)
}

func TestNewCatalogRejectsMismatchedFrame(t *testing.T) {
	df := usersFrame(t)
	declared := frame.NewSchema([]frame.Field{{Name: "other", Type: common.BoolType}})
	state, err := json.Marshal(catalogState{Tables: []*Table{
		{Name: "users", Schema: declared, Frame: df},
	}})
	require.NoError(t, err)

	_, err = NewCatalog(&memoryProvider{state: string(state)})
	require.Error(t, err)
	code, ok := common.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, common.SerializeError, code)
	assert.Contains(t, err.Error(), "does not match")
}

func TestConcurrentAdds(t *testing.T) {
	provider := &memoryProvider{}
	c, err := NewCatalog(provider)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.AddTable(fmt.Sprintf("table_%02d", i), usersSchema(), provider)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Tables(), 32)
}

func TestDiskCatalogManager(t *testing.T) {
	dir := t.TempDir()
	dcm := NewDiskCatalogManager(dir)

	_, err := dcm.LoadCatalogState()
	require.ErrorIs(t, err, os.ErrNotExist)

	c, err := NewCatalog(dcm)
	require.NoError(t, err)
	_, err = c.AddMaterializedTable("users", usersFrame(t), dcm)
	require.NoError(t, err)

	reloaded, err := NewCatalog(NewDiskCatalogManager(dir))
	require.NoError(t, err)
	table, err := reloaded.GetTable("users")
	require.NoError(t, err)
	assert.True(t, table.Materialized())
}
