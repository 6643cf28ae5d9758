package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// GetSerialized returns deserialized value stored under the key or nil if
// there is no such key.
func GetSerialized(ctx storage.Context, key interface{}) interface{} {
	data := storage.Get(ctx, key)
	if data == nil {
		return nil
	}

	return std.Deserialize(data.([]byte))
}

// SetSerialized serializes data and puts it into contract storage.
func SetSerialized(ctx storage.Context, key interface{}, value interface{}) {
	data := std.Serialize(value)
	storage.Put(ctx, key, data)
}

// PutOptional stores the value under the key or deletes the key if the value
// is nil, so that absence stays distinguishable from an empty value.
func PutOptional(ctx storage.Context, key interface{}, value interface{}) {
	if value == nil {
		storage.Delete(ctx, key)
		return
	}
	storage.Put(ctx, key, value)
}
