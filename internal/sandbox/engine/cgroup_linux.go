//go:build linux

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"codejudge/internal/sandbox/spec"
)

const cpuPeriodUs = 100000

// createRunCgroup makes a per-test cgroup v2 leaf under
// root/submissionID/testID-<nonce>, returning its path and a cleanup
// func that removes it. The nonce keeps repeated runs with the same
// submission and test ID from colliding.
func createRunCgroup(root, submissionID, testID string) (string, func(), error) {
	if root == "" {
		return "", func() {}, fmt.Errorf("cgroup root is not configured")
	}
	dir := filepath.Join(root, submissionID, fmt.Sprintf("%s-%d", testID, time.Now().UnixNano()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("mkdir cgroup: %w", err)
	}
	cleanup := func() {
		_ = killCgroup(dir)
		_ = os.Remove(dir)
	}
	return dir, cleanup, nil
}

// applyCgroupLimits writes pids.max, memory.max and cpu.max for the
// given limits. cpu.max is expressed as "<quota> <period>" where
// quota = cpuCoreFraction * period, so a CPUCore of 0.5 yields a real
// 50%-of-one-core ceiling instead of the unbounded "max" the
// isolation envelope would otherwise leave on the table.
func applyCgroupLimits(cgroupPath string, limits spec.ResourceLimit) error {
	if limits.PIDs > 0 {
		if err := writeCgroupValue(cgroupPath, "pids.max", strconv.FormatInt(limits.PIDs, 10)); err != nil {
			return err
		}
	} else {
		if err := writeCgroupValue(cgroupPath, "pids.max", "max"); err != nil {
			return err
		}
	}

	if limits.MemoryMB > 0 {
		memBytes := limits.MemoryMB * 1024 * 1024
		if err := writeCgroupValue(cgroupPath, "memory.max", strconv.FormatInt(memBytes, 10)); err != nil {
			return err
		}
	}

	if limits.CPUCore > 0 {
		quota := int64(limits.CPUCore * float64(cpuPeriodUs))
		if quota < 1000 {
			quota = 1000
		}
		if err := writeCgroupValue(cgroupPath, "cpu.max", fmt.Sprintf("%d %d", quota, cpuPeriodUs)); err != nil {
			return err
		}
	} else {
		if err := writeCgroupValue(cgroupPath, "cpu.max", fmt.Sprintf("max %d", cpuPeriodUs)); err != nil {
			return err
		}
	}

	return nil
}

func addProcessToCgroup(cgroupPath string, pid int) error {
	return writeCgroupValue(cgroupPath, "cgroup.procs", strconv.Itoa(pid))
}

func killCgroup(cgroupPath string) error {
	if cgroupPath == "" {
		return nil
	}
	if _, err := os.Stat(filepath.Join(cgroupPath, "cgroup.kill")); err != nil {
		return nil
	}
	return writeCgroupValue(cgroupPath, "cgroup.kill", "1")
}

// wasOomKilled reports whether the kernel OOM-killed anything in this
// cgroup, read from the oom_kill counter in memory.events.
func wasOomKilled(cgroupPath string) bool {
	if cgroupPath == "" {
		return false
	}
	n, err := readCgroupField(cgroupPath, "memory.events", "oom_kill")
	if err != nil {
		return false
	}
	return n > 0
}

// memoryPeakKB reads memory.peak, falling back to the process's own
// rusage maxrss when the cgroup path is unavailable (cgroup disabled
// or unsupported kernel).
func memoryPeakKB(cgroupPath string, state *os.ProcessState) int64 {
	if cgroupPath != "" {
		if peak, err := readCgroupInt(cgroupPath, "memory.peak"); err == nil {
			return peak / 1024
		}
	}
	if state == nil {
		return 0
	}
	if rusage, ok := state.SysUsage().(*syscall.Rusage); ok && rusage != nil {
		return rusage.Maxrss
	}
	return 0
}

func readCgroupInt(cgroupPath, file string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(cgroupPath, file))
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

func readCgroupField(cgroupPath, file, field string) (int64, error) {
	data, err := os.ReadFile(filepath.Join(cgroupPath, file))
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Fields(line)
		if len(parts) == 2 && parts[0] == field {
			return strconv.ParseInt(parts[1], 10, 64)
		}
	}
	return 0, fmt.Errorf("field %q not found in %s", field, file)
}

func writeCgroupValue(cgroupPath, file, value string) error {
	return os.WriteFile(filepath.Join(cgroupPath, file), []byte(value), 0o644)
}
