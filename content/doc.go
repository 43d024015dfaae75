// Package content implements the output tree a turn materializes as it runs.
//
// A Tree is an arena of nodes addressed by stable handles. Nodes are only
// ever added; the one reordering operation, PromoteToLast, moves a node to
// the end of its parent's child order by assigning it a fresh rank, so it is
// constant time and never reshapes the tree.
package content
