// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and logical names
//     for logging and tracing.
//   - Error kind markers plus the Wrap helper so every stage reports failures
//     the same way, and KindOf to name them for operators.
//   - The Executor abstraction that keeps external tool invocation (ffmpeg,
//     ffprobe, rhubarb) testable without spawning processes.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
