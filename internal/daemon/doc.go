// Package daemon runs the overlay: a fixed-rate tick loop that owns the menu
// and the popup queue, drains events posted by the watchers and listeners,
// dispatches menu actions, hot-reloads the menu configuration and presents
// rendered frames on a surface.
package daemon
