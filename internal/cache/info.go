package cache

import (
	"bufio"
	"fmt"
	"strings"
)

// ParseInfo converts a Redis INFO reply ("# Section" headers followed by
// "field:value" lines) into a flat map. Malformed lines are skipped.
func ParseInfo(raw string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// HumanBytes formats n the way Redis renders used_memory_human.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	v := float64(n)
	for _, suffix := range []string{"K", "M", "G", "T"} {
		v /= unit
		if v < unit || suffix == "T" {
			return fmt.Sprintf("%.2f%s", v, suffix)
		}
	}
	return fmt.Sprintf("%dB", n)
}
