package workout

import (
	"fmt"
	"time"
)

// months is indexed by time.Month, so slot 0 is unused.
var months = [13]string{
	"",
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Describe renders "<Variant> on <Month> <Day>" for the given creation time.
func Describe(kind Kind, created time.Time) string {
	return fmt.Sprintf("%s on %s %d", kind, months[created.Month()], created.Day())
}

// Icon is the marker glyph for a variant.
func (k Kind) Icon() string {
	if k == KindCycling {
		return "🚴‍♀️"
	}
	return "🏃‍♂️"
}

// PopupText is the text shown in the workout's map marker popup.
func (w Workout) PopupText() string {
	return w.kind.Icon() + " " + w.description
}
