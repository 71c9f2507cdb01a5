// Package backend chooses how many workers the trainers use.
package backend

import (
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"

	"github.com/YuminosukeSato/scibench/pkg/errors"
)

// Backend names accepted by Select.
const (
	Auto       = "auto"
	Sequential = "sequential"
	Parallel   = "parallel"
)

// CPUInfo is the subset of processor features that drives selection.
type CPUInfo struct {
	Brand        string
	LogicalCores int
	AVX2         bool
}

// Detect reads CPUInfo from the running processor.
func Detect() CPUInfo {
	cores := cpuid.CPU.LogicalCores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}
	brand := strings.TrimSpace(cpuid.CPU.BrandName)
	if brand == "" {
		brand = cpuid.CPU.VendorString
	}
	return CPUInfo{
		Brand:        brand,
		LogicalCores: cores,
		AVX2:         cpuid.CPU.Supports(cpuid.AVX2),
	}
}

// Backend is a resolved compute backend.
type Backend struct {
	Name    string // Sequential or Parallel, never Auto
	Workers int
	CPU     CPUInfo
}

// Select resolves name against the running processor. threads caps the
// parallel worker count; 0 means all logical cores.
func Select(name string, threads int) (Backend, error) {
	return SelectFor(name, threads, Detect())
}

// SelectFor resolves name against info.
func SelectFor(name string, threads int, info CPUInfo) (Backend, error) {
	if threads < 0 {
		return Backend{}, errors.NewValidationError("threads", "must be non-negative", threads)
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Auto:
		if info.LogicalCores > 1 && info.AVX2 {
			return parallel(threads, info), nil
		}
		return Backend{Name: Sequential, Workers: 1, CPU: info}, nil
	case Sequential:
		return Backend{Name: Sequential, Workers: 1, CPU: info}, nil
	case Parallel:
		return parallel(threads, info), nil
	default:
		return Backend{}, errors.NewValidationError("backend", "must be one of auto, sequential, parallel", name)
	}
}

func parallel(threads int, info CPUInfo) Backend {
	workers := threads
	if workers == 0 {
		workers = info.LogicalCores
	}
	if workers < 1 {
		workers = 1
	}
	return Backend{Name: Parallel, Workers: workers, CPU: info}
}
