package journal

import (
	"fmt"
	"time"

	"github.com/tinylib/msgp/msgp"

	"github.com/hkhamm/cqlclient/types"
)

// message is the wire form of a journal entry.
type message struct {
	ID        UUID     `msg:"id,extension"`
	Kind      string   `msg:"kind"`
	Statement string   `msg:"stmt"`
	Args      msgp.Raw `msg:"args"`
	Timestamp int64    `msg:"ts"`
	Duration  int64    `msg:"dur"`
	Error     string   `msg:"err"`
}

const messageFields = 7

// MarshalMsg implements msgp.Marshaler
func (m *message) MarshalMsg(b []byte) (o []byte, err error) {
	o = msgp.Require(b, m.Msgsize())
	o = msgp.AppendMapHeader(o, messageFields)
	o = msgp.AppendString(o, "id")
	o, err = msgp.AppendExtension(o, &m.ID)
	if err != nil {
		return o, msgp.WrapError(err, "ID")
	}
	o = msgp.AppendString(o, "kind")
	o = msgp.AppendString(o, m.Kind)
	o = msgp.AppendString(o, "stmt")
	o = msgp.AppendString(o, m.Statement)
	o = msgp.AppendString(o, "args")
	o, err = m.Args.MarshalMsg(o)
	if err != nil {
		return o, msgp.WrapError(err, "Args")
	}
	o = msgp.AppendString(o, "ts")
	o = msgp.AppendInt64(o, m.Timestamp)
	o = msgp.AppendString(o, "dur")
	o = msgp.AppendInt64(o, m.Duration)
	o = msgp.AppendString(o, "err")
	o = msgp.AppendString(o, m.Error)

	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (m *message) UnmarshalMsg(bts []byte) (o []byte, err error) {
	var sz uint32
	sz, bts, err = msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	for range sz {
		var field []byte
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			return bts, err
		}
		switch msgp.UnsafeString(field) {
		case "id":
			bts, err = msgp.ReadExtensionBytes(bts, &m.ID)
		case "kind":
			m.Kind, bts, err = msgp.ReadStringBytes(bts)
		case "stmt":
			m.Statement, bts, err = msgp.ReadStringBytes(bts)
		case "args":
			bts, err = m.Args.UnmarshalMsg(bts)
		case "ts":
			m.Timestamp, bts, err = msgp.ReadInt64Bytes(bts)
		case "dur":
			m.Duration, bts, err = msgp.ReadInt64Bytes(bts)
		case "err":
			m.Error, bts, err = msgp.ReadStringBytes(bts)
		default:
			bts, err = msgp.Skip(bts)
		}
		if err != nil {
			return bts, msgp.WrapError(err, string(field))
		}
	}

	return bts, nil
}

// Msgsize returns an upper bound estimate of the serialized size.
func (m *message) Msgsize() int {
	return msgp.MapHeaderSize +
		3 + msgp.ExtensionPrefixSize + UUIDSize +
		5 + msgp.StringPrefixSize + len(m.Kind) +
		5 + msgp.StringPrefixSize + len(m.Statement) +
		5 + m.Args.Msgsize() +
		3 + msgp.Int64Size +
		4 + msgp.Int64Size +
		4 + msgp.StringPrefixSize + len(m.Error)
}

// encodeEntry serializes a journal entry.
func encodeEntry(e types.JournalEntry) ([]byte, error) {
	args, err := encodeArgs(e.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode args: %w", err)
	}

	m := message{
		ID:        UUID(e.ID),
		Kind:      string(e.Kind),
		Statement: e.Statement,
		Args:      args,
		Timestamp: e.Timestamp.UnixNano(),
		Duration:  int64(e.Duration),
		Error:     e.Error,
	}

	return m.MarshalMsg(nil)
}

// decodeEntry deserializes a journal entry.
func decodeEntry(data []byte) (types.JournalEntry, error) {
	var m message
	if _, err := m.UnmarshalMsg(data); err != nil {
		return types.JournalEntry{}, fmt.Errorf("failed to decode entry: %w", err)
	}

	args, err := decodeArgs(m.Args)
	if err != nil {
		return types.JournalEntry{}, err
	}

	return types.JournalEntry{
		ID:        m.ID,
		Kind:      types.StatementKind(m.Kind),
		Statement: m.Statement,
		Args:      args,
		Timestamp: time.Unix(0, m.Timestamp).UTC(),
		Duration:  time.Duration(m.Duration),
		Error:     m.Error,
	}, nil
}

// encodeArgs serializes statement arguments to MessagePack.
//
// Encoding strategy:
//   - 16-byte arrays (gocql.UUID, uuid.UUID, [16]byte) become UUID extensions
//   - []byte stays binary
//   - Values msgp cannot encode are journaled by their fmt representation
func encodeArgs(args []any) (msgp.Raw, error) {
	if len(args) == 0 {
		return nil, nil
	}

	buf := msgp.AppendArrayHeader(nil, uint32(len(args)))
	for _, arg := range args {
		buf = appendArg(buf, arg)
	}

	return msgp.Raw(buf), nil
}

func appendArg(buf []byte, arg any) []byte {
	if u, ok := asUUID(arg); ok {
		out, err := msgp.AppendExtension(buf, &u)
		if err == nil {
			return out
		}
	}

	out, err := msgp.AppendIntf(buf, arg)
	if err != nil {
		// Unsupported driver type; keep a readable form.
		return msgp.AppendString(buf, fmt.Sprint(arg))
	}

	return out
}

// decodeArgs deserializes MessagePack back into statement arguments.
//
// UUID extensions decode to []byte; integers decode to int64.
func decodeArgs(raw msgp.Raw) ([]any, error) {
	if len(raw) == 0 || msgp.IsNil(raw) {
		return nil, nil
	}

	sz, remaining, err := msgp.ReadArrayHeaderBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to read array header: %w", err)
	}

	args := make([]any, 0, sz)
	for i := range sz {
		var val any
		val, remaining, err = msgp.ReadIntfBytes(remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to decode arg %d: %w", i, err)
		}
		if u, ok := val.(*UUID); ok {
			val = u.Bytes()
		}
		args = append(args, val)
	}

	return args, nil
}
