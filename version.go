package main

// Version is set at build time from the current tag:
//   go build -ldflags "-X main.Version=$(git describe --tags)"
var Version = "devel"
