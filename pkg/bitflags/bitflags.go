// Package bitflags stores a small closed set of boolean flags in a single
// byte. Flag values are bit positions, so callers never build masks by hand.
package bitflags

// Flags is a set of up to eight flags of type T. The zero value is empty.
type Flags[T ~uint8] struct {
	bits uint8
}

// Of returns a set containing fs.
func Of[T ~uint8](fs ...T) Flags[T] {
	var f Flags[T]
	for _, v := range fs {
		f.Set(v)
	}
	return f
}

// From wraps a raw mask, as produced by Bits.
func From[T ~uint8](bits uint8) Flags[T] {
	return Flags[T]{bits: bits}
}

func mask[T ~uint8](flag T) uint8 {
	return 1 << (uint8(flag) & 7)
}

// Has reports whether flag is set.
func (f Flags[T]) Has(flag T) bool {
	return f.bits&mask(flag) != 0
}

// Set adds flag.
func (f *Flags[T]) Set(flag T) {
	f.bits |= mask(flag)
}

// Unset removes flag.
func (f *Flags[T]) Unset(flag T) {
	f.bits &^= mask(flag)
}

// Toggle sets or clears flag depending on on.
func (f *Flags[T]) Toggle(flag T, on bool) {
	if on {
		f.Set(flag)
	} else {
		f.Unset(flag)
	}
}

// With returns a copy of f with flag set.
func (f Flags[T]) With(flag T) Flags[T] {
	f.Set(flag)
	return f
}

// Without returns a copy of f with flag cleared.
func (f Flags[T]) Without(flag T) Flags[T] {
	f.Unset(flag)
	return f
}

// Bits returns the raw mask.
func (f Flags[T]) Bits() uint8 {
	return f.bits
}

// Empty reports whether no flag is set.
func (f Flags[T]) Empty() bool {
	return f.bits == 0
}
