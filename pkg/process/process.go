// Package process 提供当前进程的资源占用统计
package process

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ResourceUsage 进程资源占用
type ResourceUsage struct {
	PID           int     `json:"pid"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryRSS     uint64  `json:"memory_rss"`
	MemoryPercent float32 `json:"memory_percent"`
	NumThreads    int32   `json:"num_threads"`
}

// SelfUsage 获取当前进程的资源占用
func SelfUsage() (*ResourceUsage, error) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("获取进程信息失败: PID=%d: %w", pid, err)
	}

	usage := &ResourceUsage{PID: pid}
	usage.Name, _ = proc.Name()
	usage.CPUPercent, _ = proc.CPUPercent()
	usage.MemoryPercent, _ = proc.MemoryPercent()
	usage.NumThreads, _ = proc.NumThreads()

	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		usage.MemoryRSS = memInfo.RSS
	}

	return usage, nil
}

// String 格式化为人类可读的单行摘要
func (u *ResourceUsage) String() string {
	return fmt.Sprintf("PID=%d CPU=%.1f%% RSS=%.1fMB 内存=%.1f%% 线程=%d",
		u.PID, u.CPUPercent, float64(u.MemoryRSS)/1024/1024, u.MemoryPercent, u.NumThreads)
}

// IsRunning 检查指定 PID 的进程是否正在运行
func IsRunning(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}
