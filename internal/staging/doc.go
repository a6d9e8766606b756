// Package staging manages per-run scratch workspaces under the configured
// staging directory and sweeps the ones abandoned by crashed runs.
package staging
