// Package buildinfo exposes version information injected at build time.
//
//	go build -ldflags "-X github.com/yndnr/authclient/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/authclient/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Version is also sent in the User-Agent of every API request.
package buildinfo
