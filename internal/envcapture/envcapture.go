// Package envcapture records the build and platform identity of a training
// run. Capture never fails: problems are written into the snapshot as
// comments instead.
package envcapture

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/klauspost/cpuid/v2"
)

// Snapshot is the captured environment. Dependencies holds one
// "module version" line per dependency, or a single "#" comment when the
// listing could not be produced.
type Snapshot struct {
	Dependencies   []string `json:"-"`
	GoVersion      string   `json:"go_version"`
	GoVersionShort string   `json:"go_version_short"`
	Platform       string   `json:"platform"`
}

// DependencyListing renders Dependencies as a newline-terminated text file.
func (s Snapshot) DependencyListing() string {
	if len(s.Dependencies) == 0 {
		return ""
	}
	return strings.Join(s.Dependencies, "\n") + "\n"
}

type Recorder struct {
	readBuildInfo func() (*debug.BuildInfo, bool)
	goVersion     func() string
	cpuBrand      func() string
}

func NewRecorder() *Recorder {
	return &Recorder{
		readBuildInfo: debug.ReadBuildInfo,
		goVersion:     runtime.Version,
		cpuBrand:      func() string { return cpuid.CPU.BrandName },
	}
}

func (r *Recorder) Capture(ctx context.Context) Snapshot {
	raw := r.goVersion()
	return Snapshot{
		Dependencies:   r.dependencies(),
		GoVersion:      raw,
		GoVersionShort: shortVersion(raw),
		Platform:       platform(r.cpuBrand()),
	}
}

func (r *Recorder) dependencies() (lines []string) {
	defer func() {
		if p := recover(); p != nil {
			lines = []string{fmt.Sprintf("# dependency capture failed: %v", p)}
		}
	}()

	info, ok := r.readBuildInfo()
	if !ok || info == nil {
		return []string{"# dependency capture failed: build info unavailable"}
	}
	lines = make([]string, 0, len(info.Deps)+1)
	if info.Main.Path != "" {
		lines = append(lines, moduleLine(&info.Main))
	}
	deps := make([]string, 0, len(info.Deps))
	for _, dep := range info.Deps {
		if dep == nil {
			continue
		}
		deps = append(deps, moduleLine(dep))
	}
	sort.Strings(deps)
	return append(lines, deps...)
}

func moduleLine(m *debug.Module) string {
	v := m.Version
	if v == "" {
		v = "(devel)"
	}
	line := m.Path + " " + v
	if m.Replace != nil {
		line += " => " + m.Replace.Path
		if m.Replace.Version != "" {
			line += " " + m.Replace.Version
		}
	}
	return line
}

// shortVersion reduces "go1.25.3" to "1.25". Unparseable input is returned
// unchanged.
func shortVersion(raw string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "go")
	if i := strings.IndexAny(trimmed, " -+"); i >= 0 {
		trimmed = trimmed[:i]
	}
	v, err := version.NewVersion(trimmed)
	if err != nil {
		return raw
	}
	seg := v.Segments()
	if len(seg) < 2 {
		return raw
	}
	return fmt.Sprintf("%d.%d", seg[0], seg[1])
}

func platform(cpu string) string {
	p := runtime.GOOS + "/" + runtime.GOARCH
	if cpu = strings.TrimSpace(cpu); cpu != "" {
		p += " (" + cpu + ")"
	}
	return p
}
