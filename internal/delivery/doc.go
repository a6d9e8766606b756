// Package delivery packages a normalized audio asset and its cue timeline for
// the avatar runtime and talks to the runtime's HTTP endpoints.
//
// Package builds the two upload requests (audio and lipsync) under one
// logical name; it performs no I/O beyond reading the audio file. Client posts
// those requests as multipart forms and triggers playback by name.
package delivery
