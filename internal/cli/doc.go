// Package cli defines the cobra command tree. Every invocation builds a
// fresh command so tests can run commands side by side.
package cli
