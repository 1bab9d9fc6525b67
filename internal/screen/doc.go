// Package screen takes desktop screenshots by delegating to a capture
// mechanism.
//
// The server never touches pixels itself. A Mechanism writes a PNG to a
// path it is given; the Invoker around it prepares the destination
// directory, runs the mechanism and confirms the file appeared. The stock
// mechanism runs an external command (screencapture on macOS, grim, scrot,
// gnome-screenshot and friends on Linux, or whatever the user configures)
// with the destination path as its final argument.
package screen
