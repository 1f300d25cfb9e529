// Package testutil provides utilities for testing scaffoldcheck components.
//
// Key components:
//   - MockRunner: testify mock of runner.CommandRunner for argument checks
//   - RecordingRunner: scripted runner that records calls (with the cwd at
//     call time) and dispatches to per-command handlers
//   - CopierHandler / WriteProject: fake a copier render by writing a
//     minimal generated project built from the -d answers
//   - FileTree / WriteTree / TemplateTree: declarative directory trees on
//     any afero filesystem
//   - RequireTools / RequireTemplate: skip integration tests when the
//     external toolchain is not installed
package testutil
