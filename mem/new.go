package mem

import "unsafe"

// Object construction hooks: the scalar and array analogs of the language
// allocation operators, routed through Malloc/Free.
//
// The arena is a plain byte region, invisible to the garbage collector's
// pointer scan. Types placed in it must therefore be pointer-free: a Go
// pointer stored in a pooled object keeps nothing alive.

// New allocates a zeroed T from the pool. Returns nil on exhaustion.
// Zero-sized types come from the runtime, matching their foreign
// classification in Del.
func New[T any]() *T {
	size := int(unsafe.Sizeof(*new(T)))
	if size == 0 {
		return new(T)
	}
	b := Calloc(1, size)
	if b == nil {
		return nil
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// Del releases an object obtained from New. nil is a no-op; objects not
// owned by the pool are forwarded like any foreign pointer.
func Del[T any](t *T) {
	if t == nil {
		return
	}
	size := int(unsafe.Sizeof(*t))
	if size == 0 {
		return
	}
	Free(unsafe.Slice((*byte)(unsafe.Pointer(t)), size))
}

// MakeSlice allocates a zeroed []T of length n from the pool. Returns nil
// on exhaustion.
func MakeSlice[T any](n int) []T {
	if n <= 0 {
		return nil
	}
	elem := int(unsafe.Sizeof(*new(T)))
	if elem == 0 {
		return make([]T, n)
	}
	b := Calloc(n, elem)
	if b == nil {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// DelSlice releases a slice obtained from MakeSlice. The byte view handed
// to Free spans the whole slice, so the instrumentation sees the same byte
// count MakeSlice charged.
func DelSlice[T any](s []T) {
	if cap(s) == 0 {
		return
	}
	elem := int(unsafe.Sizeof(s[:1][0]))
	if elem == 0 {
		return
	}
	Free(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*elem))
}
