// Package severity maps an earthquake magnitude to the urgency shown to users.
package severity

import (
	"fmt"
	"strings"
)

type Tier int

const (
	Info Tier = iota
	Warning
	Critical
)

const (
	WarningThreshold  = 4.0
	CriticalThreshold = 5.5
)

func (t Tier) String() string {
	switch t {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return Info, nil
	case "warning":
		return Warning, nil
	case "critical":
		return Critical, nil
	default:
		return Info, fmt.Errorf("unknown severity tier: %q", s)
	}
}

type Classification struct {
	Tier        Tier    `json:"tier"`
	Magnitude   float64 `json:"magnitude"`
	Color       string  `json:"color"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
}

type display struct {
	color       string
	title       string
	description string
}

var displays = [...]display{
	Info: {
		color:       "#16A34A",
		title:       "Hafif Deprem",
		description: "Genelde hissedilmez ya da çok hafif hissedilir",
	},
	Warning: {
		color:       "#CA8A04",
		title:       "Dikkat",
		description: "Hissedilebilir, hafif sarsıntı, nadiren küçük hasar",
	},
	Critical: {
		color:       "#DC2626",
		title:       "Kritik Uyarı",
		description: "Hasar oluşturabilecek düzeyde deprem, dikkatli olunmalı",
	},
}

// TierOf accepts any float. NaN and negative magnitudes land in Info.
func TierOf(magnitude float64) Tier {
	switch {
	case magnitude >= CriticalThreshold:
		return Critical
	case magnitude >= WarningThreshold:
		return Warning
	default:
		return Info
	}
}

func Classify(magnitude float64) Classification {
	tier := TierOf(magnitude)
	d := displays[tier]
	return Classification{
		Tier:        tier,
		Magnitude:   magnitude,
		Color:       d.color,
		Title:       d.title,
		Description: d.description,
	}
}

// AtLeast reports whether t is as urgent as min or more.
func (t Tier) AtLeast(min Tier) bool {
	return t >= min
}
