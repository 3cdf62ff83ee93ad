// Package buildinfo reports the version of the kvsh binary.
//
// Release builds inject values via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/kvsh/internal/infra/buildinfo.Version=v1.0.0 \
//	  -X github.com/yndnr/kvsh/internal/infra/buildinfo.Commit=abc123"
//
// Without ldflags, module and VCS data embedded by the Go toolchain
// are used where available.
package buildinfo
