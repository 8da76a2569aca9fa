package app

import "strings"

// GeneralRepairSkill is the fallback trade when no keyword matches.
const GeneralRepairSkill = "general repair"

// skillKeywords maps trades to the description keywords that imply them.
// A slice keeps extraction order stable across runs.
var skillKeywords = []struct {
	skill    string
	keywords []string
}{
	{"plumbing", []string{"leak", "pipe", "faucet", "drain", "toilet", "sink", "water"}},
	{"electrical", []string{"outlet", "switch", "light", "wiring", "electrical", "breaker", "power"}},
	{"hvac", []string{"heating", "cooling", "ac", "air conditioning", "furnace", "thermostat", "hvac"}},
	{"carpentry", []string{"door", "window", "cabinet", "shelf", "wood", "frame", "trim"}},
	{"painting", []string{"paint", "wall", "ceiling", "color", "primer"}},
	{"appliance repair", []string{"refrigerator", "washer", "dryer", "dishwasher", "oven", "stove", "appliance"}},
	{"roofing", []string{"roof", "shingle", "gutter", "leak ceiling"}},
	{"flooring", []string{"floor", "tile", "carpet", "hardwood", "laminate"}},
}

// ExtractSkills derives the required trades from a free-text description
// by keyword scan. It always returns at least one skill.
func ExtractSkills(description string) []string {
	lower := strings.ToLower(description)
	var found []string
	for _, entry := range skillKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				found = append(found, entry.skill)
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{GeneralRepairSkill}
	}
	return found
}
