// Package version exposes build information set at link time, e.g.
//
//	go build -ldflags "-X techrobotics-site/internal/version.Version=v1.2.0"
package version

import (
	"techrobotics-site/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/common/version"
)

const Program = "techrobotics-site"

var (
	Version   string = "dev"
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

func init() {
	version.Version = Version
	version.Revision = GitCommit
	version.BuildDate = BuildTime
}

func GetVersion() string {
	return Version
}

func GetFullVersion() string {
	return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
}

// Print returns the multi-line version banner shown by -version.
func Print() string {
	return version.Print(Program)
}

// Register exports the build_info gauge on reg.
func Register(reg prometheus.Registerer) error {
	return reg.Register(versioncollector.NewCollector(metrics.Namespace))
}
