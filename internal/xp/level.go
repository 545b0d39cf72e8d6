package xp

import (
	"math"
)

// 等级曲线: level = floor(sqrt(totalXP/100)) + 1
// 即 0XP -> 1级, 100XP -> 2级, 400XP -> 3级, 900XP -> 4级，二次增长。

// LevelForXP 把累计XP映射为等级。纯函数，无IO。
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(totalXP)/100.0)) + 1
}

// XPThresholdForLevel 返回达到某个等级所需的最低累计XP，是LevelForXP的逆。
func XPThresholdForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return (level - 1) * (level - 1) * 100
}
