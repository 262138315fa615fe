// Package redisserver provides the RESP protocol front end of respkv.
//
// It implements the RESP2 subset needed by the command set below,
// using only the Go standard library for framing:
//   - arrays of bulk strings on input (simple strings tolerated as elements)
//   - simple strings, null bulk strings and errors on output
//
// Supported commands:
//   - PING, ECHO
//   - GET, SET
//
// Input that is not an array is answered with +PONG. Elements of a request
// that are not concrete bulk strings are dropped from the argument list.
package redisserver
