// Package app contains the core application logic. It defines the main App
// struct, its configuration, and one run mode per CLI command, decoupled
// from the CLI itself.
package app
