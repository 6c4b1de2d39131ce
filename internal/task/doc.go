// Package task defines the build task model and the registry that owns the
// authoritative name-to-task and output-path-to-task mappings.
package task
