package repository

// LagWindows is the fixed set of delays (hours after an event) at which price
// impact is sampled. Patterns are only ever recorded at these lags.
var LagWindows = []int{1, 4, 12, 24, 48, 72, 168}

// IsValidLag reports whether hours is one of the supported lag windows.
func IsValidLag(hours int) bool {
	for _, h := range LagWindows {
		if h == hours {
			return true
		}
	}
	return false
}
