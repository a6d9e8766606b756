// Package config loads, normalizes, and validates mouthpiece configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ELEVENLABS_API_KEY and RHUBARB_PATH. The Config type centralizes every knob
// the pipeline and CLI need: the audio normalization target, analyzer
// location, validation tolerance, and avatar runtime endpoints.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
