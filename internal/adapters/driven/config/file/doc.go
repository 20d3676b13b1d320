// Package file provides file-based configuration and prompt stores.
//
// Configuration lives in a TOML file under the quaero config
// directory. Prompts are user-editable text files with embedded
// defaults as fallback.
package file
