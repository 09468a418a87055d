package complexity

import "strings"

// Level is a migration complexity rating.
type Level string

const (
	Unknown  Level = "Unknown"
	Low      Level = "Low"
	Medium   Level = "Medium"
	High     Level = "High"
	Critical Level = "Critical"
)

// Levels lists the rated levels from least to most severe.
var Levels = []Level{Low, Medium, High, Critical}

// SeverityOrder lists the rated levels from most to least severe.
var SeverityOrder = []Level{Critical, High, Medium, Low}

// ParseLevel accepts any casing and surrounding blanks. Anything else is Unknown.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low
	case "medium":
		return Medium
	case "high":
		return High
	case "critical":
		return Critical
	}
	return Unknown
}

// Key is the lowercase form used as a map key in report output.
func (l Level) Key() string {
	return strings.ToLower(string(l))
}

// Rated reports whether l is one of Low, Medium, High or Critical.
func (l Level) Rated() bool {
	return l.Rank() > 0
}

// Rank orders levels by severity; Unknown ranks 0.
func (l Level) Rank() int {
	switch l {
	case Low:
		return 1
	case Medium:
		return 2
	case High:
		return 3
	case Critical:
		return 4
	}
	return 0
}

// Worst returns the most severe rated level, or Unknown when none is rated.
func Worst(levels ...Level) Level {
	worst := Unknown
	for _, l := range levels {
		if l.Rank() > worst.Rank() {
			worst = l
		}
	}
	return worst
}
