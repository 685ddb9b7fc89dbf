package relations

import (
	"fmt"
	"time"
)

var (
	polishWeekdays = [...]string{"niedziela", "poniedziałek", "wtorek", "środa", "czwartek", "piątek", "sobota"}
	polishMonths   = [...]string{
		"stycznia", "lutego", "marca", "kwietnia", "maja", "czerwca",
		"lipca", "sierpnia", "września", "października", "listopada", "grudnia",
	}
)

// FormatPolishDate renders t the way memory cards show it, e.g. "środa 1 maja 2024".
// The zero time renders as "?".
func FormatPolishDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return fmt.Sprintf("%s %d %s %d", polishWeekdays[t.Weekday()], t.Day(), polishMonths[t.Month()-1], t.Year())
}
