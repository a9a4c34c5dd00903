package schedule

// Canonical weekday codes, Monday first. All stored OpeningTime rows use
// these codes; the compressor relies on their order to build ranges.
const (
	Monday    = "Mon"
	Tuesday   = "Tue"
	Wednesday = "Wed"
	Thursday  = "Thu"
	Friday    = "Fri"
	Saturday  = "Sat"
	Sunday    = "Sun"
)

var weekOrder = [7]string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekdayIndex returns the position of a weekday code within the canonical
// week (Mon=0 .. Sun=6).
func WeekdayIndex(code string) (int, bool) {
	for i, w := range weekOrder {
		if w == code {
			return i, true
		}
	}
	return 0, false
}

func IsWeekday(code string) bool {
	_, ok := WeekdayIndex(code)
	return ok
}
