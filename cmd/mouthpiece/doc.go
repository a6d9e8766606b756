// Package main hosts the mouthpiece CLI.
//
// The Cobra command tree turns terminal invocations into pipeline runs
// (audio or text in, validated lip-sync timeline out), manual uploads and
// playback against the avatar runtime, environment checks, run history, and
// configuration scaffolding. Configuration and logging are resolved once per
// invocation in commandContext so subcommands only deal with their own flags.
package main
