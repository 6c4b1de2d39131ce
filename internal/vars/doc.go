// Package vars resolves the typed keyword arguments a task body receives,
// layering declared defaults, an HCL vars file, and --vars command-line
// overrides in increasing precedence.
package vars
