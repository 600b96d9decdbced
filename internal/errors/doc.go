// Package errors defines the error taxonomy for the replink session core.
//
// All failures a caller can hit at the dispatch boundary are either one
// of the sentinel errors here or a typed error wrapping an underlying
// cause. Everything supports errors.Is and errors.As; nothing in this
// package is fatal to the host process.
package errors
