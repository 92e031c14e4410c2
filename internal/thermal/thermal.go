package thermal

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
)

// HardwareInfo contains detected hardware information
type HardwareInfo struct {
	NumCPU         int
	IsDarwin       bool
	IsMacBookAir   bool
	IsAppleSilicon bool
	ModelName      string
}

// DetectHardware detects the current hardware configuration
func DetectHardware() HardwareInfo {
	info := HardwareInfo{
		NumCPU:   runtime.NumCPU(),
		IsDarwin: runtime.GOOS == "darwin",
	}

	if cpus, err := cpu.Info(); err == nil && len(cpus) > 0 {
		info.ModelName = strings.TrimSpace(cpus[0].ModelName)
	}

	if info.IsDarwin {
		info.IsAppleSilicon = runtime.GOARCH == "arm64" ||
			strings.Contains(strings.ToLower(info.ModelName), "apple")
		model := strings.ToLower(detectMacModel())
		info.IsMacBookAir = strings.Contains(model, "macbookair") || strings.Contains(model, "macbook air")
	}

	return info
}

// detectMacModel returns the Mac model identifier, e.g. MacBookAir10,1
func detectMacModel() string {
	output, err := exec.Command("sysctl", "-n", "hw.model").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// OptimalConcurrency returns how many directories are resolved in parallel.
// A positive configured value wins.
func OptimalConcurrency(hw HardwareInfo, configured int) int {
	if configured > 0 {
		return configured
	}

	optimal := max(hw.NumCPU, 1)

	// Passive cooling throttles quickly under sustained load
	if hw.IsMacBookAir {
		optimal = max(hw.NumCPU/2, 2)
	} else if hw.IsDarwin && hw.IsAppleSilicon {
		optimal = max((hw.NumCPU*3)/4, 2)
	}

	return optimal
}

// FormatHardwareInfo returns a human-readable hardware description
func FormatHardwareInfo(hw HardwareInfo) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("%d cores", hw.NumCPU))
	if hw.ModelName != "" {
		parts = append(parts, hw.ModelName)
	}
	if hw.IsDarwin && hw.IsAppleSilicon {
		parts = append(parts, "Apple Silicon")
	} else if !hw.IsDarwin {
		parts = append(parts, runtime.GOOS)
	}

	return strings.Join(parts, ", ")
}
