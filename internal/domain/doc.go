// Package domain defines the transfer types exchanged across the
// repository boundary and the structured error model shared by every
// operation.
//
// These types are deliberately separate from the persistence rows in
// internal/store: the store maps between its internal records and these
// structs explicitly, so internal-only columns never leak to callers.
package domain
