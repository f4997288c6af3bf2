// Package daemon holds the long-running support pieces of the bar process:
// configuration hot reload and desktop notifications about the bar itself.
package daemon
