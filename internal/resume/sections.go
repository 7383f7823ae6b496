package resume

import "strings"

type section int

const (
	sectionNone section = iota
	sectionEducation
	sectionExperience
	sectionSkill
)

// ParseSections splits plain resume text into a Record. A line mentioning
// EDUCATION, EXPERIENCE or SKILL (case-insensitive, checked in that order)
// starts a section and is itself discarded. Blank lines and lines before the
// first header are dropped; kept lines end with "\n".
func ParseSections(text string) Record {
	var (
		rec     Record
		current = sectionNone
	)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		header := strings.ToUpper(line)
		switch {
		case strings.Contains(header, "EDUCATION"):
			current = sectionEducation
		case strings.Contains(header, "EXPERIENCE"):
			current = sectionExperience
		case strings.Contains(header, "SKILL"):
			current = sectionSkill
		default:
			rec.append(current, line)
		}
	}

	return rec
}

func (r *Record) append(s section, line string) {
	switch s {
	case sectionEducation:
		r.Education += line + "\n"
	case sectionExperience:
		r.Experience += line + "\n"
	case sectionSkill:
		r.Skill += line + "\n"
	}
}
