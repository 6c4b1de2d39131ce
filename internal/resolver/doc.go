// Package resolver is a pure query layer over a task registry: topological
// resolution, cycle detection, forward and backward reachability, and graph
// export. It holds no state beyond a reference to the registry.
package resolver
