// Package utils provides small shared helpers for null handling and
// opaque token generation.
package utils
