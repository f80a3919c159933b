// Package config loads and validates the blinkwatchd configuration file.
//
// Load(path) reads a yaml file, fills missing fields from Defaults() and
// runs Validate, which rejects every out-of-range value with an error
// naming the offending field and its valid range. The daemon refuses to
// start on any validation failure; per-frame runtime faults never reach
// this package.
//
// Watch(ctx, path, onChange) follows the file with fsnotify and calls
// onChange with each successfully re-validated Config. Invalid rewrites are
// logged and dropped, keeping the previous config active. Atomic
// editor saves (rename-over) are handled by re-adding the watch path.
//
// Secrets never live in the file: token_env / url_env fields name the
// environment variable holding the value, resolved via the Token() and
// URL() helpers at use time.
package config
