package matching

// Details carries the job fields shown next to a match.
type Details struct {
	Education string `json:"education"`
	Skill     string `json:"skill"`
}

// Result is one corpus job matched against a resume.
type Result struct {
	JobName string  `json:"job_name"`
	Score   float64 `json:"score"`
	Row     int     `json:"row_index"`
	Details Details `json:"details"`
}

// ATSReport is the corpus-mode answer.
type ATSReport struct {
	MatchedJob string   `json:"matched_job"`
	ATSScore   float64  `json:"ats_score"`
	TopMatches []Result `json:"top_matches"`
}

// CustomReport is the job-description-mode answer.
type CustomReport struct {
	ATSScore float64 `json:"ats_score"`
}
