package cache

// Serializer turns an argument list into a cache key. Equal argument lists
// must produce equal strings.
type Serializer interface {
	Serialize(args []any) string
}

// SerializerFunc adapts a plain function to Serializer.
type SerializerFunc func(args []any) string

// Serialize calls f.
func (f SerializerFunc) Serialize(args []any) string {
	return f(args)
}
