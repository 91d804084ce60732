package models

// String methods for the custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Category
func (c Category) String() string { return string(c) }

// Kind
func (k Kind) String() string { return string(k) }

// Severity
func (s Severity) String() string { return string(s) }
