// Package pipeline provides a framework for executing harvest stages in
// sequence.
//
// The pipeline pattern is used to process a catalog harvest through its
// stages: preparing working directories, walking the catalog listing,
// reconciling downloads, and writing the metadata documents. Each stage is
// implemented as a Step that receives the session report and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running harvests
//
// Stage ordering is the correctness backbone: the walk completes before any
// download starts, and the metadata documents are written only after every
// batch has been reconciled.
package pipeline
