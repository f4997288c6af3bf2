// Package main is the wlrs-bar command: the bar itself plus a few
// subcommands for inspecting sensors and configuration without a display.
package main

func main() {
	Execute()
}
