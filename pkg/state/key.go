package state

// Key gives a store key a compile-time value type. Declare keys as
// package-level variables next to the loaders that fill them:
//
//	var userKey = state.KeyOf[*User]("user")
//
//	func loadUser(ctx *server.Ctx) error {
//	    u, err := fetchUser(ctx.Param("id"))
//	    if err != nil {
//	        return err
//	    }
//	    userKey.Set(ctx.State(), u)
//	    return nil
//	}
type Key[T any] struct {
	name string
}

// KeyOf creates a typed key for the given store key name.
func KeyOf[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the underlying store key.
func (k Key[T]) Name() string { return k.name }

// Set stores a value under the key.
func (k Key[T]) Set(s *Store, value T) {
	s.Set(k.name, value)
}

// Get returns the stored value, or the zero value when absent or when
// the stored value has a different dynamic type.
func (k Key[T]) Get(s *Store) (T, bool) {
	var zero T
	v, ok := s.Get(k.name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOr returns the stored value or fallback.
func (k Key[T]) GetOr(s *Store, fallback T) T {
	if v, ok := k.Get(s); ok {
		return v
	}
	return fallback
}
