//go:build !linux

package main

import "os"

// startInputReaders begins reading the given devices, one blocking goroutine
// per device. Non-Linux platforms have no epoll; this path exists mostly so
// the daemon still builds for development on other systems.
func startInputReaders(files []*os.File, events chan<- inputEvent, readErr chan<- error) {
	for _, f := range files {
		go readInputEvents(f, events, readErr)
	}
}
