package evaluation

import "time"

// SetNowFunc swaps the controller clock and returns a func restoring it.
func SetNowFunc(f func() time.Time) func() {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}
