// Package preflight provides readiness checks for the tools, directories, and
// avatar runtime that mouthpiece depends on.
//
// These checks run in two contexts:
//   - The pipeline runner calls RunAll before the first job so a batch fails
//     fast on an unwritable staging directory.
//   - The CLI "mouthpiece status" command combines CheckSystemDeps,
//     CheckDirectoryAccess, and CheckRuntime to display environment health.
package preflight
