// Package corpus loads the job dataset the vector index is built from.
package corpus

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Job is one corpus row. Its identity is its position in Corpus.Jobs.
type Job struct {
	Name              string `mapstructure:"name"`
	EducationDetails  string `mapstructure:"education_details"`
	ExperienceDetails string `mapstructure:"experience_details"`
	Skill             string `mapstructure:"skill"`

	// CombinedText is education, experience and skill joined by single spaces.
	CombinedText string `mapstructure:"-"`
}

// Corpus is the ordered list of jobs. Row i of the vector index always
// describes Jobs[i].
type Corpus struct {
	Jobs     []Job
	Encoding string
	Source   string
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Jobs)
}

// Job returns the row at i, or false when i is out of range.
func (c *Corpus) Job(i int) (Job, bool) {
	if c == nil || i < 0 || i >= len(c.Jobs) {
		return Job{}, false
	}
	return c.Jobs[i], true
}

// Texts returns the combined text of every row in row order.
func (c *Corpus) Texts() []string {
	if c == nil {
		return nil
	}
	texts := make([]string, len(c.Jobs))
	for i, job := range c.Jobs {
		texts[i] = job.CombinedText
	}
	return texts
}

// Fingerprint identifies the exact sequence of combined texts. An index built
// for one fingerprint must not serve a corpus with another.
func (c *Corpus) Fingerprint() string {
	h := sha256.New()
	var size [8]byte
	for _, text := range c.Texts() {
		binary.LittleEndian.PutUint64(size[:], uint64(len(text)))
		h.Write(size[:])
		h.Write([]byte(text))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func combine(education, experience, skill string) string {
	return education + " " + experience + " " + skill
}
