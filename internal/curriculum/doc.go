// Package curriculum holds the pure rules over pensum documents: structural
// validation, prerequisite reference checks, progress aggregation,
// prerequisite satisfaction and the lossy import normalizer.
//
// Nothing in this package performs I/O or keeps state; every function is safe
// for concurrent use.
package curriculum
