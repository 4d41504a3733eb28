package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Detector reports the identifiers of the running host.
type Detector interface {
	Detect(ctx context.Context) (Host, error)
}

// RuntimeDetector reports the platform and architecture the running
// executable was built for.
type RuntimeDetector struct{}

func (RuntimeDetector) Detect(ctx context.Context) (Host, error) {
	return Host{
		Platform: runtime.GOOS,
		Arch:     runtime.GOARCH,
	}, nil
}

// SystemDetector asks the kernel for the OS and machine architecture, so an
// emulated launcher still reports the real hardware. It falls back to the
// runtime values if the query fails or reports a name the resolver does not
// know.
type SystemDetector struct {
	// Info defaults to host.InfoWithContext.
	Info func(ctx context.Context) (*host.InfoStat, error)
}

// NewDetector returns the detector used by the go-ios entry points.
func NewDetector() Detector {
	return &SystemDetector{}
}

func (d *SystemDetector) Detect(ctx context.Context) (Host, error) {
	fallback, _ := RuntimeDetector{}.Detect(ctx)

	info := d.Info
	if info == nil {
		info = host.InfoWithContext
	}

	stat, err := info(ctx)
	if err != nil || stat == nil {
		if ctx.Err() != nil {
			return Host{}, fmt.Errorf("detect host: %w", ctx.Err())
		}
		return fallback, nil
	}

	h := Host{
		Platform: stat.OS,
		Arch:     stat.KernelArch,
	}
	if _, ok := platformMapping[normalize(h.Platform)]; !ok {
		h.Platform = fallback.Platform
	}
	if _, ok := archMapping[normalize(h.Arch)]; !ok {
		h.Arch = fallback.Arch
	}
	return h, nil
}
