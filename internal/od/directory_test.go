package od_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/exmachina-dev/CANopenNode/internal/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustEntry(t *testing.T, index uint16, fields od.RawSection) *od.Entry {
	t.Helper()
	e, err := od.NewEntry(index, fields)
	require.NoError(t, err)
	return e
}

func varFields(name, dt, access string) od.RawSection {
	return od.RawSection{"name": name, "object_type": "VAR", "data_type": dt, "access_type": access}
}

func TestDirectoryAdd(t *testing.T) {
	d := od.NewDirectory()
	require.NoError(t, d.Add(mustEntry(t, 0x2000, varFields("a", "UINT8", "RO"))))
	require.NoError(t, d.Add(mustEntry(t, 0x1000, varFields("b", "UINT8", "RO"))))

	err := d.Add(mustEntry(t, 0x2000, varFields("c", "UINT8", "RO")))
	assert.ErrorIs(t, err, od.ErrDuplicate)

	f, err := od.NewFeature("X", 1)
	require.NoError(t, err)
	require.NoError(t, d.Add(f))
	g, err := od.NewFeature("X", 2)
	require.NoError(t, err)
	assert.ErrorIs(t, d.Add(g), od.ErrDuplicate)

	assert.ErrorIs(t, d.Add("not an entry"), od.ErrType)
	assert.ErrorIs(t, d.Add(42), od.ErrType)

	assert.Equal(t, []uint16{0x1000, 0x2000}, d.Indices())
	assert.Equal(t, 2, d.Len())
}

func TestDirectoryRejectsChild(t *testing.T) {
	d := od.NewDirectory()
	rec := mustEntry(t, 0x1018, od.RawSection{"name": "identity", "object_type": "RECORD"})
	c, err := rec.AddChild(1, varFields("vendor", "UINT32", "RO"))
	require.NoError(t, err)
	assert.ErrorIs(t, d.AddEntry(c), od.ErrType)
}

func TestDirectoryCount(t *testing.T) {
	d := od.NewDirectory()
	rec := mustEntry(t, 0x1018, od.RawSection{"name": "identity", "object_type": "RECORD"})
	_, err := rec.AddChild(0, varFields("count", "UINT8", "RO"))
	require.NoError(t, err)
	_, err = rec.AddChild(1, varFields("vendor", "UINT32", "RO"))
	require.NoError(t, err)
	require.NoError(t, d.AddEntry(rec))
	require.NoError(t, d.AddEntry(mustEntry(t, 0x1000, varFields("device type", "UINT32", "RO"))))

	assert.Equal(t, 4, d.Count())
}

func TestInfoKeepsOrder(t *testing.T) {
	var info od.Info
	info.Set("VendorName", "ACME")
	info.Set("ProductName", "Widget")
	info.Set("VendorName", "ACME Corp")
	assert.Equal(t, []string{"VendorName", "ProductName"}, info.Keys)
	assert.Equal(t, "ACME Corp", info.Get("VendorName"))
	assert.Equal(t, "", info.Get("Missing"))
}

func combinedDirectory(t *testing.T, second od.RawSection) *od.Directory {
	t.Helper()
	d := od.NewDirectory()
	f, err := od.NewFeature("channels", 2)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x2100, 0x2110, 1))
	require.NoError(t, d.AddFeature(f))
	require.NoError(t, d.AddEntry(mustEntry(t, 0x2100, varFields("channel", "UINT16", "RW"))))
	require.NoError(t, d.AddEntry(mustEntry(t, 0x2101, second)))
	return d
}

func TestResolve(t *testing.T) {
	d := od.NewDirectory()
	f, err := od.NewFeature("SDO server", 3)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x1200, 0x1280, 1))
	require.NoError(t, d.AddFeature(f))
	for _, idx := range []uint16{0x1200, 0x1201} {
		require.NoError(t, d.AddEntry(mustEntry(t, idx, varFields("sdo", "UINT32", "RO"))))
	}
	require.NoError(t, d.AddEntry(mustEntry(t, 0x1000, varFields("device type", "UINT32", "RO"))))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.IsCombined(0x1200))
	assert.True(t, a.IsFirst(0x1200))
	assert.True(t, a.IsCombined(0x1201))
	assert.False(t, a.IsFirst(0x1201))
	assert.Equal(t, 1, a.Position(0x1201))
	assert.Equal(t, uint16(0x1200), a.FirstIndex(0x1201))
	assert.False(t, a.IsCombined(0x1000))
	assert.True(t, a.Emits(0x1000))
	assert.False(t, a.Emits(0x1201))
	assert.Equal(t, uint16(0x1000), a.FirstIndex(0x1000))

	m, ok := a.Lookup(0x1201)
	require.True(t, ok)
	assert.Same(t, f, m.Feature)
	assert.Equal(t, 3, m.Count)
}

func TestResolveDoubleAssignment(t *testing.T) {
	d := od.NewDirectory()
	f1, err := od.NewFeature("A", 2)
	require.NoError(t, err)
	require.NoError(t, f1.AddObject(0x2000, 0x2010, 1))
	f2, err := od.NewFeature("B", 2)
	require.NoError(t, err)
	require.NoError(t, f2.AddObject(0x2001, 0x2010, 1))
	require.NoError(t, d.AddFeature(f1))
	require.NoError(t, d.AddFeature(f2))
	for _, idx := range []uint16{0x2000, 0x2001, 0x2002} {
		require.NoError(t, d.AddEntry(mustEntry(t, idx, varFields("v", "UINT8", "RO"))))
	}

	_, err = od.Resolve(d, discardLogger())
	assert.ErrorIs(t, err, od.ErrStructure)
}

func TestValidateAccessTypeMismatch(t *testing.T) {
	d := combinedDirectory(t, varFields("channel", "UINT16", "RO"))
	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)

	err = od.Validate(d, a, discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, od.ErrValue)
	assert.Contains(t, err.Error(), "access_type")
	assert.Contains(t, err.Error(), "0x2101")
	assert.Contains(t, err.Error(), "0x2100")
}

func TestValidateCombinedVarFields(t *testing.T) {
	type testCase struct {
		name   string
		second od.RawSection
		field  string
	}

	cases := []testCase{
		{name: "name", second: varFields("other", "UINT16", "RW"), field: "name"},
		{name: "data type", second: varFields("channel", "UINT32", "RW"), field: "data_type"},
		{
			name:   "memory type",
			second: od.RawSection{"name": "channel", "object_type": "VAR", "data_type": "UINT16", "access_type": "RW", "memory_type": "ROM"},
			field:  "memory_type",
		},
		{
			name:   "PDO mapping",
			second: od.RawSection{"name": "channel", "object_type": "VAR", "data_type": "UINT16", "access_type": "RW", "PDO_mapping": "OPT"},
			field:  "PDO_mapping",
		},
		{
			name:   "object type",
			second: od.RawSection{"name": "channel", "object_type": "ARRAY", "data_type": "UINT16", "access_type": "RW"},
			field:  "object_type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := combinedDirectory(t, tc.second)
			a, err := od.Resolve(d, discardLogger())
			require.NoError(t, err)
			err = od.Validate(d, a, discardLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "["+tc.field+"]")
		})
	}
}

func TestValidateCombinedMatching(t *testing.T) {
	d := combinedDirectory(t, varFields("channel", "UINT16", "RW"))
	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, od.Validate(d, a, discardLogger()))
}

func TestValidateRecordIgnoresDataTypeAndName(t *testing.T) {
	d := od.NewDirectory()
	f, err := od.NewFeature("records", 2)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x1800, 0x1802, 1))
	require.NoError(t, d.AddFeature(f))

	r1 := mustEntry(t, 0x1800, od.RawSection{"name": "tpdo param", "object_type": "RECORD", "data_type": "UINT8", "access_type": "RO"})
	r2 := mustEntry(t, 0x1801, od.RawSection{"name": "tpdo param", "object_type": "RECORD", "data_type": "UINT32", "access_type": "RO"})
	require.NoError(t, d.AddEntry(r1))
	require.NoError(t, d.AddEntry(r2))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, od.Validate(d, a, discardLogger()))

	r3 := mustEntry(t, 0x1801, od.RawSection{"name": "tpdo param", "object_type": "RECORD", "access_type": "RW"})
	d2 := od.NewDirectory()
	require.NoError(t, d2.AddFeature(f))
	require.NoError(t, d2.AddEntry(r1))
	require.NoError(t, d2.AddEntry(r3))
	a2, err := od.Resolve(d2, discardLogger())
	require.NoError(t, err)
	assert.ErrorIs(t, od.Validate(d2, a2, discardLogger()), od.ErrValue)
}

func TestValidateCombinedShape(t *testing.T) {
	vstring := func(text string) func(*testing.T, uint16) *od.Entry {
		return func(t *testing.T, index uint16) *od.Entry {
			return mustEntry(t, index, od.RawSection{"name": "label", "object_type": "VAR", "data_type": "VSTRING", "access_type": "RO", "default": text})
		}
	}
	array := func(dt string, defaults ...string) func(*testing.T, uint16) *od.Entry {
		return func(t *testing.T, index uint16) *od.Entry {
			e := mustEntry(t, index, od.RawSection{"name": "gains", "object_type": "ARRAY", "data_type": dt, "access_type": "RW"})
			_, err := e.AddChild(0, od.RawSection{"name": "count", "data_type": "UINT8", "access_type": "RO"})
			require.NoError(t, err)
			for i, v := range defaults {
				_, err := e.AddChild(uint8(i+1), od.RawSection{"name": "gain", "default": v})
				require.NoError(t, err)
			}
			return e
		}
	}
	record := func(dt string, names ...string) func(*testing.T, uint16) *od.Entry {
		return func(t *testing.T, index uint16) *od.Entry {
			e := mustEntry(t, index, od.RawSection{"name": "rpdo param", "object_type": "RECORD", "data_type": dt, "access_type": "RW"})
			for i, n := range names {
				_, err := e.AddChild(uint8(i+1), varFields(n, "UINT32", "RW"))
				require.NoError(t, err)
			}
			return e
		}
	}

	type testCase struct {
		name   string
		first  func(*testing.T, uint16) *od.Entry
		second func(*testing.T, uint16) *od.Entry
		field  string
	}

	cases := []testCase{
		{name: "string length", first: vstring("ab"), second: vstring("abcdef"), field: "default"},
		{name: "same string length", first: vstring("ab"), second: vstring("cd")},
		{name: "element count", first: array("UINT16", "1"), second: array("UINT16", "1", "2", "3"), field: "sub_number"},
		{name: "element string length", first: array("VSTRING", "ab", "cd"), second: array("VSTRING", "ab", "cdef"), field: "default"},
		{name: "same elements", first: array("UINT16", "1", "2"), second: array("UINT16", "3", "4")},
		{name: "record children", first: record("UINT8", "Identifier", "Extra"), second: record("UINT8", "Count", "CobId"), field: "children"},
		{name: "record child count", first: record("UINT8", "Identifier", "Extra"), second: record("UINT8", "Identifier", "Extra", "More"), field: "sub_number"},
		{name: "record own data type", first: record("UINT8", "Identifier", "Extra"), second: record("UINT32", "Identifier", "Extra")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := od.NewDirectory()
			f, err := od.NewFeature("channels", 2)
			require.NoError(t, err)
			require.NoError(t, f.AddObject(0x1400, 0x1410, 1))
			require.NoError(t, d.AddFeature(f))
			require.NoError(t, d.AddEntry(tc.first(t, 0x1400)))
			require.NoError(t, d.AddEntry(tc.second(t, 0x1401)))

			a, err := od.Resolve(d, discardLogger())
			require.NoError(t, err)
			err = od.Validate(d, a, discardLogger())
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, od.ErrValue)
			assert.Contains(t, err.Error(), "0x1401")
			assert.Contains(t, err.Error(), "["+tc.field+"]")
		})
	}
}

func TestValidateDuplicateUID(t *testing.T) {
	d := od.NewDirectory()
	require.NoError(t, d.AddEntry(mustEntry(t, 0x2000, varFields("motor speed", "UINT16", "RW"))))
	require.NoError(t, d.AddEntry(mustEntry(t, 0x2001, varFields("motor_speed", "UINT16", "RW"))))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	err = od.Validate(d, a, discardLogger())
	assert.ErrorIs(t, err, od.ErrDuplicate)
	assert.Contains(t, err.Error(), "0x2000")
	assert.Contains(t, err.Error(), "0x2001")
}

func TestValidateDuplicateRecordMember(t *testing.T) {
	d := od.NewDirectory()
	rec := mustEntry(t, 0x1018, od.RawSection{"name": "identity", "object_type": "RECORD"})
	_, err := rec.AddChild(1, varFields("vendor id", "UINT32", "RO"))
	require.NoError(t, err)
	_, err = rec.AddChild(2, varFields("vendor-id", "UINT32", "RO"))
	require.NoError(t, err)
	require.NoError(t, d.AddEntry(rec))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	err = od.Validate(d, a, discardLogger())
	assert.ErrorIs(t, err, od.ErrDuplicate)
	assert.Contains(t, err.Error(), "0x1018")
}

func TestValidateMissingCanonical(t *testing.T) {
	d := od.NewDirectory()
	f, err := od.NewFeature("channels", 2)
	require.NoError(t, err)
	require.NoError(t, f.AddObject(0x2100, 0x2110, 1))
	require.NoError(t, d.AddFeature(f))
	require.NoError(t, d.AddEntry(mustEntry(t, 0x2101, varFields("channel", "UINT16", "RW"))))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	assert.ErrorIs(t, od.Validate(d, a, discardLogger()), od.ErrStructure)
}

func TestValidateRecordMemberMemoryType(t *testing.T) {
	d := od.NewDirectory()
	rec := mustEntry(t, 0x1018, od.RawSection{"name": "identity", "object_type": "RECORD", "memory_type": "ROM"})
	_, err := rec.AddChild(1, od.RawSection{"name": "vendor id", "data_type": "UINT32", "access_type": "RO", "memory_type": "RAM"})
	require.NoError(t, err)
	require.NoError(t, d.AddEntry(rec))

	a, err := od.Resolve(d, discardLogger())
	require.NoError(t, err)
	err = od.Validate(d, a, discardLogger())
	assert.ErrorIs(t, err, od.ErrStructure)
	assert.Contains(t, err.Error(), "[memory_type]")
}

func TestDirectoryFeatureMacroCollision(t *testing.T) {
	d := od.NewDirectory()
	f, err := od.NewFeature("SDO server", 1)
	require.NoError(t, err)
	require.NoError(t, d.AddFeature(f))

	g, err := od.NewFeature("sdo-server", 1)
	require.NoError(t, err)
	assert.ErrorIs(t, d.AddFeature(g), od.ErrDuplicate)
	assert.Equal(t, []string{"SDO server"}, d.FeatureNames())
}
