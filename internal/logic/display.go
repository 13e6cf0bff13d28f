package logic

// Digits projects t onto six decimal digits, most significant first:
// hour tens, hour ones, minute tens, minute ones, second tens, second ones.
// A field above 99 (only reachable through wrapping adjustments) yields a
// tens value above 9; the display driver decides what to show for it.
func Digits(t Time) [6]uint8 {
	return [6]uint8{
		t.Hour / 10, t.Hour % 10,
		t.Minute / 10, t.Minute % 10,
		t.Second / 10, t.Second % 10,
	}
}
