package od_test

import (
	"testing"

	"github.com/exmachina-dev/CANopenNode/internal/od"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	v, err := od.ParseValue(od.INT16, "-0x10")
	require.NoError(t, err)
	assert.EqualValues(t, -16, v.Int.Int64())

	v, err = od.ParseValue(od.UINT32, "$NODEID+0x180")
	require.NoError(t, err)
	assert.True(t, v.NodeIDRelative)
	assert.EqualValues(t, 0x180, v.Int.Int64())
	assert.Equal(t, "0x180", v.Text)

	v, err = od.ParseValue(od.BOOL, "true")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v.Int.Int64())
	v, err = od.ParseValue(od.BOOL, "0")
	require.NoError(t, err)
	assert.EqualValues(t, 0, v.Int.Int64())

	v, err = od.ParseValue(od.REAL32, "1.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v.Real, 1e-9)

	v, err = od.ParseValue(od.VSTRING, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", v.Text)
	assert.Equal(t, 11, v.Len(od.VSTRING))

	v, err = od.ParseValue(od.OSTRING, "01 0a ff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x0a, 0xff}, v.Bytes)
	assert.Equal(t, 3, v.Len(od.OSTRING))

	v, err = od.ParseValue(od.OSTRING, "010aff")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x0a, 0xff}, v.Bytes)

	v, err = od.ParseValue(od.USTRING, "héllo")
	require.NoError(t, err)
	assert.Equal(t, 5, v.Len(od.USTRING))

	var nilValue *od.Value
	assert.Equal(t, 0, nilValue.Len(od.VSTRING))
}

func TestParseValueErrors(t *testing.T) {
	for _, tc := range []struct {
		dt  od.DataType
		raw string
	}{
		{od.UINT8, "abc"},
		{od.UINT8, "0x"},
		{od.BOOL, "maybe"},
		{od.BOOL, "2"},
		{od.REAL64, "1.2.3"},
		{od.OSTRING, "0g"},
	} {
		_, err := od.ParseValue(tc.dt, tc.raw)
		assert.ErrorIs(t, err, od.ErrValue, "%s %q", tc.dt, tc.raw)
	}
}

func TestParseIndex(t *testing.T) {
	n, err := od.ParseIndex("1A00", 16)
	require.NoError(t, err)
	assert.Equal(t, 0x1A00, n)

	n, err = od.ParseIndex("0x1f", 8)
	require.NoError(t, err)
	assert.Equal(t, 0x1f, n)

	_, err = od.ParseIndex("10000", 16)
	assert.ErrorIs(t, err, od.ErrValue)
	_, err = od.ParseIndex("DeviceInfo", 16)
	assert.ErrorIs(t, err, od.ErrValue)
}

func TestDataTypeTable(t *testing.T) {
	type testCase struct {
		dt       od.DataType
		size     int
		cname    string
		signed   bool
		unsigned bool
		array    bool
	}

	cases := []testCase{
		{od.BOOL, 1, "BOOLEAN", false, false, false},
		{od.INT8, 1, "INTEGER8", true, false, false},
		{od.INT24, 3, "INTEGER24", true, false, false},
		{od.INT64, 8, "INTEGER64", true, false, false},
		{od.UINT8, 1, "UNSIGNED8", false, true, false},
		{od.UINT56, 7, "UNSIGNED56", false, true, false},
		{od.REAL64, 8, "REAL64", false, false, false},
		{od.VSTRING, -1, "VISIBLE_STRING", false, false, true},
		{od.OSTRING, -1, "OCTET_STRING", false, false, true},
		{od.USTRING, -1, "UNICODE_STRING", false, false, true},
		{od.DOMAIN, -1, "DOMAIN", false, false, true},
		{od.TIMEOD, 6, "TIME_OF_DAY", false, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.dt.String(), func(t *testing.T) {
			assert.Equal(t, tc.size, tc.dt.Size())
			assert.Equal(t, tc.cname, tc.dt.CName())
			assert.Equal(t, tc.signed, tc.dt.IsSignedInteger())
			assert.Equal(t, tc.unsigned, tc.dt.IsUnsignedInteger())
			assert.Equal(t, tc.signed || tc.unsigned, tc.dt.IsInteger())
			assert.Equal(t, tc.array, tc.dt.IsArray())

			parsed, err := od.ParseDataType(tc.dt.String())
			require.NoError(t, err)
			assert.Equal(t, tc.dt, parsed)
		})
	}

	_, err := od.ParseDataType("UINT128")
	assert.ErrorIs(t, err, od.ErrValue)
	_, err = od.ParseAccessType("RX")
	assert.ErrorIs(t, err, od.ErrValue)
	_, err = od.ParsePDOMapping("BOTH")
	assert.ErrorIs(t, err, od.ErrValue)
	p, err := od.ParsePDOMapping("")
	require.NoError(t, err)
	assert.Equal(t, od.PDONone, p)
}
