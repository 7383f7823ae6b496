// Package resume turns resume documents into the three-field record the
// matching engine consumes.
package resume

import "strings"

// Record is a parsed resume. Every field may be empty.
type Record struct {
	Education  string `mapstructure:"education_details" json:"education_details"`
	Experience string `mapstructure:"experience_details" json:"experience_details"`
	Skill      string `mapstructure:"skill" json:"skill"`
}

// ProfileText joins the sections in the fixed order education, experience,
// skill with single spaces. Empty sections still contribute their separator.
func (r Record) ProfileText() string {
	return r.Education + " " + r.Experience + " " + r.Skill
}

// Values returns the section values in field declaration order.
func (r Record) Values() []string {
	return []string{r.Education, r.Experience, r.Skill}
}

// IsEmpty reports whether no section has any non-blank content.
func (r Record) IsEmpty() bool {
	for _, v := range r.Values() {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
