package risk

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrTierOutOfRange = errors.New("risk tier out of range")

// Tier is a province's seismic hazard degree, 1 (highest) to 5 (lowest).
// Only Tier1..Tier5 can be constructed outside this package; the zero value
// is Tier3, the same tier unmapped provinces fall back to.
type Tier struct {
	offset int8 // degree - 3
}

var (
	Tier1 = Tier{offset: -2}
	Tier2 = Tier{offset: -1}
	Tier3 = Tier{offset: 0}
	Tier4 = Tier{offset: 1}
	Tier5 = Tier{offset: 2}
)

// DefaultTier is returned for province ids missing from the table.
var DefaultTier = Tier3

var tierColors = [5]string{
	"#DC2626", // red
	"#FB923C", // orange
	"#FDE047", // yellow
	"#FEF9C3", // light yellow
	"#D1FAE5", // light green
}

var tierLabels = [5]string{
	"1. Derece - En Yüksek Risk",
	"2. Derece - Yüksek Risk",
	"3. Derece - Orta Risk",
	"4. Derece - Düşük-Orta Risk",
	"5. Derece - En Düşük Risk",
}

func (t Tier) Degree() int {
	return 3 + int(t.offset)
}

func (t Tier) Color() string {
	return tierColors[t.Degree()-1]
}

func (t Tier) Label() string {
	return tierLabels[t.Degree()-1]
}

func (t Tier) String() string {
	return fmt.Sprintf("tier%d", t.Degree())
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Degree())
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var degree int
	if err := json.Unmarshal(data, &degree); err != nil {
		return fmt.Errorf("error decoding risk tier: %w", err)
	}
	parsed, err := ParseTier(degree)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTier converts a 1..5 degree, typically from a query parameter.
func ParseTier(degree int) (Tier, error) {
	if degree < 1 || degree > 5 {
		return Tier{}, fmt.Errorf("%w: %d", ErrTierOutOfRange, degree)
	}
	return Tier{offset: int8(degree - 3)}, nil
}

// Tiers lists every tier from highest to lowest risk.
func Tiers() []Tier {
	return []Tier{Tier1, Tier2, Tier3, Tier4, Tier5}
}

type LegendEntry struct {
	Degree int    `json:"degree"`
	Color  string `json:"color"`
	Label  string `json:"label"`
}

func Legend() []LegendEntry {
	tiers := Tiers()
	entries := make([]LegendEntry, 0, len(tiers))
	for _, t := range tiers {
		entries = append(entries, LegendEntry{
			Degree: t.Degree(),
			Color:  t.Color(),
			Label:  t.Label(),
		})
	}
	return entries
}
