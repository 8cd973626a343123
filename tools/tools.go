//go:build tools

// Package tools pins the lint and static-analysis binaries this module is
// built with, so `go mod tidy` doesn't prune them as unused.
package tools

import (
	_ "github.com/client9/misspell/cmd/misspell"
	_ "github.com/gordonklaus/ineffassign"
	_ "github.com/kisielk/errcheck"
	_ "github.com/mdempsky/unconvert"
	_ "golang.org/x/tools/cmd/goimports"
	_ "honnef.co/go/tools/cmd/staticcheck"
	_ "mvdan.cc/gofumpt"
)
