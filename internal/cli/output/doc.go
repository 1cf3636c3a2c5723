// Package output renders command results for authclient.
//
//   - formatter.go: Formatter interface, format parsing, messages
//   - table.go: tabwriter tables built from structs, slices and maps
//   - json.go, yaml.go: machine-readable encodings
//   - spinner.go: activity indicator while a request is in flight
//
// Results go to stdout; spinners, messages and errors go to stderr so
// json and yaml output stays pipeable.
package output
