// Package ast is the lowered syntax tree of one Go source file.
//
// Nodes live in a per-file arena addressed by NodeID. Only named grammar
// nodes are kept; each records the grammar field it fills in its parent and
// its byte span, which is the anchor for every later text edit. Files are
// plain data: immutable after lowering, safe to share between goroutines and
// serialisable for the parse cache.
package ast
