// Package loader reads declarative HCL build files and populates a task
// registry from them. It is the boundary between the on-disk task language
// and the engine: everything past Load works purely on registry entities.
package loader
