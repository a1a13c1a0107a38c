package domain

import "math"

// ClampBrightness bounds level to [0, max]
func ClampBrightness(level, max int) int {
	if level < 0 {
		return 0
	}
	if level > max {
		return max
	}
	return level
}

// AmbientTarget converts a raw illuminance reading into a backlight level.
// The product is clamped to [0, max] without overflowing.
func AmbientTarget(illuminance, scale, max int) int {
	if illuminance <= 0 || scale <= 0 {
		return 0
	}
	// (max/scale + 1) * scale > max, so anything above max/scale saturates
	if illuminance > max/scale {
		return max
	}
	return ClampBrightness(illuminance*scale, max)
}

// TransitionSteps returns the levels written when moving from current to
// target in steps linear increments. Each level is current plus the rounded
// step multiple, clamped to [0, max]; the last level is always target.
// Consecutive duplicates are dropped, so small deltas produce fewer writes.
func TransitionSteps(current, target, steps, max int) []int {
	target = ClampBrightness(target, max)
	if current == target {
		return nil
	}
	if steps < 1 {
		steps = 1
	}

	stepSize := float64(target-current) / float64(steps)
	levels := make([]int, 0, steps)
	last := current
	for i := 1; i <= steps; i++ {
		level := current + int(math.Round(stepSize*float64(i)))
		if i == steps {
			level = target
		}
		level = ClampBrightness(level, max)
		if level == last {
			continue
		}
		levels = append(levels, level)
		last = level
	}
	return levels
}
