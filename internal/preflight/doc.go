// Package preflight checks that the transfer pipeline can work before it
// starts watching: transport binaries on PATH, an accessible watch root and
// a reachable media server.
//
// The checks gate startup only. Nothing here runs again once the watcher is
// up; a server that goes away later surfaces as failed transfers.
package preflight
