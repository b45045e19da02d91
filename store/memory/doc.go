// Package memory keeps reports in process memory. It is the default
// report backend and the one used by tests.
package memory
