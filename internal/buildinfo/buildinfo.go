// Package buildinfo exposes version metadata stamped into the binary at
// link time. Build with
//
//	go build -ldflags "-X github.com/dbelyakov/invoicekeeper/internal/buildinfo.buildVersion=v1.0.0 \
//	  -X github.com/dbelyakov/invoicekeeper/internal/buildinfo.buildDate=2025-08-01 \
//	  -X github.com/dbelyakov/invoicekeeper/internal/buildinfo.buildCommit=abc1234"
//
// Unstamped values render as "N/A".
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// PrintBuildData writes the stamped build metadata to w, one line per value.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", buildVersion)
	fmt.Fprintf(w, "Build date: %s\n", buildDate)
	fmt.Fprintf(w, "Build commit: %s\n", buildCommit)
}
