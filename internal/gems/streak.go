package gems

// BaseStreakThreshold is the shortest run of correct answers that earns a
// streak gem.
const BaseStreakThreshold = 3

// LongestStreak returns the longest run of true values in results.
func LongestStreak(results []bool) int {
	best, run := 0, 0
	for _, ok := range results {
		if !ok {
			run = 0
			continue
		}
		run++
		best = max(best, run)
	}
	return best
}
