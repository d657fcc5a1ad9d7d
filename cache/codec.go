package cache

import (
	"reflect"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-memoize/internal/cacheinfra"
	"github.com/vmihailenco/msgpack/v5"
)

// Encoded is returned by byte oriented stores such as the redis store. The
// memoize engine decodes it into the result type of the wrapped function.
type Encoded = cacheinfra.Encoded

// Encode produces the payload a byte oriented store keeps for value.
func Encode(value any) (Encoded, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "encode cached value")
	}
	return Encoded(data), nil
}

// Decode unpacks data into a new value of type t.
func Decode(data Encoded, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	if err := msgpack.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode cached value as "+t.String())
	}
	return ptr.Elem(), nil
}
