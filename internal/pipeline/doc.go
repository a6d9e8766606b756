// Package pipeline drives one utterance from source audio (or text) to a
// validated lip-sync timeline and, optionally, into the avatar runtime.
//
// A Runner executes the stages in order: synthesize (text jobs only),
// normalize, analyze, parse, validate, package, write, deliver. Each run gets
// a request ID and a private workspace under the staging directory that is
// removed when the run ends. Any stage failure stops the run and is reported
// as a *StageError naming the stage; nothing is retried. RunAll executes a
// batch with bounded parallelism where one failed job does not cancel the
// others.
package pipeline
