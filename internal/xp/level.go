package xp

// levelThresholds is the cumulative XP required to reach each level:
// level n requires thresholds[n-1]. Beyond the table, each additional
// level costs extraLevelCost more XP.
var levelThresholds = []int{0, 100, 300, 600, 1000}

const extraLevelCost = 500

// Progress describes where a cumulative XP total sits on the level curve.
type Progress struct {
	Level       int
	XPIntoLevel int
	XPToNext    int
}

// LevelOf maps cumulative XP to a level and the XP into/remaining for the
// next level. It is total over non-negative XP and monotonic: more XP
// never yields a lower level. This function is the single source of truth
// for levels — no other component assigns one.
func LevelOf(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}

	level := 1
	for level < len(levelThresholds) && totalXP >= levelThresholds[level] {
		level++
	}

	floor := levelThresholds[level-1]
	var next int
	if level < len(levelThresholds) {
		next = levelThresholds[level]
	} else {
		// Past the table: 1000, 1500, 2000, ...
		top := levelThresholds[len(levelThresholds)-1]
		over := (totalXP - top) / extraLevelCost
		level = len(levelThresholds) + over
		floor = top + over*extraLevelCost
		next = floor + extraLevelCost
	}

	return Progress{
		Level:       level,
		XPIntoLevel: totalXP - floor,
		XPToNext:    next - totalXP,
	}
}
