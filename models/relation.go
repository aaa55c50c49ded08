package models

// Ref is a related entity that may or may not have been fetched.
//
// A zero Ref is "not loaded". A loaded Ref may still hold nil when the
// referenced row does not exist (for example a race nobody has claimed yet).
type Ref[T any] struct {
	loaded bool
	value  *T
}

// Loaded returns a Ref marked as fetched and holding v (which may be nil).
func Loaded[T any](v *T) Ref[T] {
	return Ref[T]{loaded: true, value: v}
}

func (r Ref[T]) IsLoaded() bool {
	return r.loaded
}

// Get returns the related entity and true only if it was fetched and exists.
func (r Ref[T]) Get() (*T, bool) {
	if !r.loaded || r.value == nil {
		return nil, false
	}
	return r.value, true
}

func (r *Ref[T]) Set(v *T) {
	r.loaded = true
	r.value = v
}

func (r *Ref[T]) Reset() {
	r.loaded = false
	r.value = nil
}

// Value is Get without the flag, convenient in templates.
func (r Ref[T]) Value() *T {
	v, _ := r.Get()
	return v
}
