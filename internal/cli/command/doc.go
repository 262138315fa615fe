// Package command provides the respkv-cli command definitions.
//
// Each subcommand maps to one server command:
//
//   - ping: PING
//   - echo: ECHO <message>
//   - get: GET <key>
//   - set: SET <key> <value>
//
// Commands share one connection opened in the app's Before hook.
package command
