package severity

type band struct {
	min   float64
	color string
}

// Finer-grained than the three tiers; used for list badges.
var badgeBands = []band{
	{7.0, "#7F1D1D"},
	{6.0, "#B91C1C"},
	{5.0, "#EF4444"},
	{4.0, "#F97316"},
	{3.0, "#EAB308"},
}

const badgeFloor = "#22C55E"

// Badge returns the background color for a magnitude chip in earthquake lists.
func Badge(magnitude float64) string {
	for _, b := range badgeBands {
		if magnitude >= b.min {
			return b.color
		}
	}
	return badgeFloor
}
