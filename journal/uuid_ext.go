package journal

import (
	"reflect"

	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"
)

// UUIDExtensionType is the MessagePack extension type for UUIDs.
// Type 10 is in the user-defined range (0-127); types 3, 4 and 5 are used by
// msgp for complex64, complex128 and time.Time.
const UUIDExtensionType int8 = 10

// UUIDSize is the fixed size of a UUID (16 bytes).
const UUIDSize = 16

func init() {
	// Register the UUID extension so msgp can decode it back to the correct type
	msgp.RegisterExtension(UUIDExtensionType, func() msgp.Extension {
		return new(UUID)
	})
}

// UUID is a 16-byte identifier that implements msgp.Extension.
//
// Journal entry IDs and UUID statement arguments (gocql.UUID, uuid.UUID or
// plain [16]byte) are written through this type.
type UUID [UUIDSize]byte

// ExtensionType returns the MessagePack extension type for UUID.
func (u *UUID) ExtensionType() int8 {
	return UUIDExtensionType
}

// Len returns the encoded length of a UUID (always 16 bytes).
func (u *UUID) Len() int {
	return UUIDSize
}

// MarshalBinaryTo copies the UUID bytes into the destination buffer.
//
// Parameters:
//   - b: Destination buffer (must be at least 16 bytes)
//
// Returns:
//   - error: nil (never fails for valid input)
func (u *UUID) MarshalBinaryTo(b []byte) error {
	copy(b, u[:])

	return nil
}

// UnmarshalBinary copies bytes from the source buffer into the UUID.
//
// Parameters:
//   - b: Source buffer containing 16 bytes of UUID data
//
// Returns:
//   - error: msgp.ErrShortBytes if b holds fewer than 16 bytes
func (u *UUID) UnmarshalBinary(b []byte) error {
	if len(b) < UUIDSize {
		return msgp.ErrShortBytes
	}
	copy(u[:], b)

	return nil
}

// Bytes returns the UUID as a byte slice.
func (u *UUID) Bytes() []byte {
	return u[:]
}

// String returns the UUID in standard hyphenated format.
func (u *UUID) String() string {
	return uuid.UUID(*u).String()
}

var byteArray16 = reflect.TypeOf([UUIDSize]byte{})

// asUUID reports whether arg is a 16-byte array, or a pointer to one, of any
// named type (gocql.UUID, uuid.UUID, UUID) and returns its value.
func asUUID(arg any) (UUID, bool) {
	if arg == nil {
		return UUID{}, false
	}

	rv := reflect.ValueOf(arg)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return UUID{}, false
		}
		rv = rv.Elem()
	}
	if !rv.Type().ConvertibleTo(byteArray16) || rv.Kind() != reflect.Array {
		return UUID{}, false
	}

	return UUID(rv.Convert(byteArray16).Interface().([UUIDSize]byte)), true
}
