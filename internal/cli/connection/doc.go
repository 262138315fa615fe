// Package connection provides the RESP client used by respkv-cli.
//
// A Client owns one TCP connection to a respkv server. Requests are
// encoded as arrays of bulk strings and replies are read with a
// github.com/tidwall/resp Reader.
package connection
