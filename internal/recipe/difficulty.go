package recipe

// DeriveDifficulty scores total time, instruction count and ingredient count
// from 1 to 3 each and maps the average to a level. Unknown time counts as 0.
func DeriveDifficulty(totalMinutes float64, instructions, ingredients int) Difficulty {
	score := bucket(totalMinutes, 30, 60) +
		bucket(float64(instructions), 5, 10) +
		bucket(float64(ingredients), 5, 10)

	avg := float64(score) / 3
	switch {
	case avg < 1.7:
		return Easy
	case avg < 2.5:
		return Medium
	default:
		return Hard
	}
}

func bucket(v, low, high float64) int {
	switch {
	case v < low:
		return 1
	case v < high:
		return 2
	default:
		return 3
	}
}
