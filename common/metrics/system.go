package metrics

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// containerMarkers maps files or cgroup substrings to a container runtime
var containerMarkers = []struct {
	path    string
	cgroup  string
	runtime string
}{
	{path: "/.dockerenv", runtime: "docker"},
	{path: "/var/run/secrets/kubernetes.io", runtime: "kubernetes"},
	{cgroup: "kubepods", runtime: "kubernetes"},
	{cgroup: "docker", runtime: "docker"},
	{cgroup: "containerd", runtime: "containerd"},
}

// captureSystemInfo gathers host details for the startup log
func captureSystemInfo() *SystemInfo {
	info := &SystemInfo{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPULogical: runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		Hostname:   "unknown",
	}
	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}

	info.InContainer, info.ContainerRuntime = detectContainer()
	info.OSVersion = osVersion()
	info.TotalMemoryMB = totalMemoryMB()

	return info
}

func detectContainer() (bool, string) {
	cgroup, _ := os.ReadFile("/proc/1/cgroup")
	for _, m := range containerMarkers {
		if m.path != "" {
			if _, err := os.Stat(m.path); err == nil {
				return true, m.runtime
			}
			continue
		}
		if bytes.Contains(cgroup, []byte(m.cgroup)) {
			return true, m.runtime
		}
	}
	return false, ""
}

func osVersion() string {
	switch runtime.GOOS {
	case "linux":
		if name := osReleaseName("/etc/os-release"); name != "" {
			return name
		}
		return "Linux " + command("uname", "-r")
	case "darwin":
		return "macOS " + command("sw_vers", "-productVersion")
	default:
		return "unknown"
	}
}

// osReleaseName reads PRETTY_NAME, falling back to NAME plus VERSION
func osReleaseName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	fields := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if ok {
			fields[key] = strings.Trim(value, `"`)
		}
	}

	if pretty := fields["PRETTY_NAME"]; pretty != "" {
		return pretty
	}
	return strings.TrimSpace(fields["NAME"] + " " + fields["VERSION"])
}

func totalMemoryMB() uint64 {
	switch runtime.GOOS {
	case "linux":
		return memInfoTotalMB("/proc/meminfo")
	case "darwin":
		n, err := strconv.ParseUint(command("sysctl", "-n", "hw.memsize"), 10, 64)
		if err != nil {
			return 0
		}
		return n / 1024 / 1024
	default:
		return 0
	}
}

// memInfoTotalMB parses the MemTotal line (in kB) of a meminfo file
func memInfoTotalMB(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(data), "\n") {
		rest, ok := strings.CutPrefix(line, "MemTotal:")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}

func command(name string, args ...string) string {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		return "(unknown)"
	}
	return strings.TrimSpace(string(out))
}
