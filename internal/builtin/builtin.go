// Package builtin implements the pipeline's built-in dataflow operations:
// Link (copy/move/set/delete a field), Filter (a count-reducing
// predicate), Collapse (N input namespaces to 1), Explode (1 input
// namespace to N), and Log (a side-effecting pass-through). Each is an
// operation.Operation constructed directly or via its Factory for use in
// declarative pipe configuration.
package builtin
