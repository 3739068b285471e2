// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.pagelens.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: editable prompt files with change watching
package file
