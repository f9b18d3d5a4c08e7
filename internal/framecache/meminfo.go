package framecache

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

const meminfoPath = "/proc/meminfo"

// SystemMemory reports total and available RAM in bytes, read from
// /proc/meminfo. On failure both values are 0; the capacity estimator
// then floors to a single-frame buffer.
func SystemMemory() (total, free uint64) {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	return parseMeminfo(f)
}

func parseMeminfo(f *os.File) (total, free uint64) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			total = meminfoKB(line) * 1024
		case strings.HasPrefix(line, "MemAvailable:"):
			free = meminfoKB(line) * 1024
		}
		if total > 0 && free > 0 {
			break
		}
	}
	return total, free
}

// meminfoKB extracts the numeric kB value from a meminfo line like
// "MemTotal:       16384000 kB".
func meminfoKB(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	n, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
