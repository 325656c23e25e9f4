// Package strix provides the execution engine for preset block graphs: small
// directed graphs of processing steps ("blocks") that transform an initial
// capture (text, image, or audio-derived text) through one or more AI
// completions, optionally branching into parallel alternatives.
//
// The package defines the data model shared by the rest of the module:
//   - Block: one configured step (model, prompt template, side-effect flags)
//   - Pipeline: the blocks of a preset plus its explicit directed edges
//   - Capture: the original captured payload carried alongside the text flow
//   - CancelToken: the shared, monotonic abort flag for one pipeline run
//
// Execution itself lives in the executor package; model providers implement
// the provider package interfaces; UI, clipboard, speech and history
// integrations are injected through the sink package.
package strix
