package journal

import (
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"

	"github.com/hkhamm/cqlclient/types"
)

func TestAsUUID(t *testing.T) {
	raw := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	t.Run("gocql.UUID", func(t *testing.T) {
		g := gocql.TimeUUID()
		res, ok := asUUID(g)
		assert.True(t, ok)
		assert.Equal(t, UUID(g), res)
	})

	t.Run("google/uuid.UUID", func(t *testing.T) {
		u := uuid.New()
		res, ok := asUUID(u)
		assert.True(t, ok)
		assert.Equal(t, UUID(u), res)
	})

	t.Run("[16]byte", func(t *testing.T) {
		res, ok := asUUID(raw)
		assert.True(t, ok)
		assert.Equal(t, UUID(raw), res)
	})

	t.Run("*[16]byte", func(t *testing.T) {
		res, ok := asUUID(&raw)
		assert.True(t, ok)
		assert.Equal(t, UUID(raw), res)
	})

	t.Run("*uuid.UUID", func(t *testing.T) {
		u := uuid.New()
		res, ok := asUUID(&u)
		assert.True(t, ok)
		assert.Equal(t, UUID(u), res)
	})

	t.Run("not a uuid", func(t *testing.T) {
		for _, v := range []any{nil, "abc", raw[:], [8]byte{}, [16]int{}, (*[16]byte)(nil), 42} {
			_, ok := asUUID(v)
			assert.False(t, ok, "%T", v)
		}
	})
}

func TestUUIDString(t *testing.T) {
	u := UUID(uuid.MustParse("6ab09bec-e68e-48d9-a5f8-97e6fb4c9b47"))
	assert.Equal(t, "6ab09bec-e68e-48d9-a5f8-97e6fb4c9b47", u.String())
	assert.Len(t, u.Bytes(), UUIDSize)
}

func TestUUIDUnmarshalShort(t *testing.T) {
	var u UUID
	require.ErrorIs(t, u.UnmarshalBinary([]byte{1, 2, 3}), msgp.ErrShortBytes)
}

func TestEncodeArgs(t *testing.T) {
	id := gocql.TimeUUID()

	tests := []struct {
		name     string
		input    []any
		expected []any
	}{
		{
			name:     "no args",
			input:    nil,
			expected: nil,
		},
		{
			name:     "text and int",
			input:    []any{"La Petite Tonkinoise", 42},
			expected: []any{"La Petite Tonkinoise", int64(42)},
		},
		{
			name:     "uuid becomes bytes",
			input:    []any{id, uuid.UUID(id), [16]byte(id)},
			expected: []any{id.Bytes(), id.Bytes(), id.Bytes()},
		},
		{
			name:     "blob stays binary",
			input:    []any{[]byte{0xca, 0xfe}},
			expected: []any{[]byte{0xca, 0xfe}},
		},
		{
			name:     "null",
			input:    []any{nil, true},
			expected: []any{nil, true},
		},
		{
			name:     "collection",
			input:    []any{[]any{"jazz", "1920s"}},
			expected: []any{[]any{"jazz", "1920s"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeArgs(tt.input)
			require.NoError(t, err)

			got, err := decodeArgs(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

type opaque struct{ n int }

func TestEncodeArgsUnsupportedFallsBackToText(t *testing.T) {
	raw, err := encodeArgs([]any{opaque{n: 7}, "next"})
	require.NoError(t, err)

	got, err := decodeArgs(raw)
	require.NoError(t, err)
	assert.Equal(t, []any{"{7}", "next"}, got)
}

func TestEncodeDecodeEntry(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 9, 26, 535000000, time.UTC)
	entry := types.JournalEntry{
		ID:        uuid.New(),
		Kind:      types.KindInsert,
		Statement: "INSERT INTO simplex.songs (id,title) VALUES (?,?);",
		Args:      []any{"Bye Bye Blackbird"},
		Timestamp: ts,
		Duration:  1500 * time.Microsecond,
		Error:     "timeout",
	}

	data, err := encodeEntry(entry)
	require.NoError(t, err)

	got, err := decodeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, entry, got)
	assert.True(t, got.Failed())
}

func TestDecodeEntrySkipsUnknownFields(t *testing.T) {
	b := msgp.AppendMapHeader(nil, 2)
	b = msgp.AppendString(b, "kind")
	b = msgp.AppendString(b, "select")
	b = msgp.AppendString(b, "future")
	b = msgp.AppendInt(b, 1)

	got, err := decodeEntry(b)
	require.NoError(t, err)
	assert.Equal(t, types.KindSelect, got.Kind)
	assert.Nil(t, got.Args)
}

func TestDecodeEntryMalformed(t *testing.T) {
	_, err := decodeEntry([]byte{0x01})
	require.Error(t, err)
}
