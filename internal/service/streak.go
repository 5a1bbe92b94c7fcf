package service

import "alcyxob/routine-progress/internal/domain"

// ReplayStreak walks day indexes in chronological order and returns the
// trailing run of in-order cyclic completions, plus the day expected next.
// A mismatch restarts the run at that entry.
func ReplayStreak(dayIndexes []int, cycleLength int) (streak, expectedDay int) {
	if cycleLength < 1 {
		cycleLength = 1
	}
	expectedDay = 1
	for _, day := range dayIndexes {
		if day == expectedDay {
			streak++
			expectedDay = domain.NextDay(expectedDay, cycleLength)
			continue
		}
		streak = 1
		expectedDay = domain.NextDay(day, cycleLength)
	}
	return streak, expectedDay
}
