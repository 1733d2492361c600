package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(raw string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// addMinutes shifts a clock value forward; invalid input yields the input.
func addMinutes(start string, minutes int) string {
	value, ok := parseClock(start)
	if !ok {
		return start
	}
	return formatClock(value + minutes)
}

// clockRangesOverlap reports whether [aStart,aEnd) intersects [bStart,bEnd).
func clockRangesOverlap(aStart, aEnd, bStart, bEnd string) bool {
	as, ok1 := parseClock(aStart)
	ae, ok2 := parseClock(aEnd)
	bs, ok3 := parseClock(bStart)
	be, ok4 := parseClock(bEnd)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return as < be && bs < ae
}
