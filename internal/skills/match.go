package skills

import (
	"math"

	"github.com/jonathan/resume-matcher/internal/types"
)

// Match compares a résumé skill set with a job-description skill set.
//
// matched = jd ∩ resume, missing = jd − resume and extra = resume − jd. The percentage is
// 100 × |matched| / |jd| rounded to two decimals, and 0 when the job description has no skills.
func Match(resume, jd SkillSet) types.MatchResult {
	matched := jd.Intersect(resume)

	var pct float64
	if jd.Len() > 0 {
		pct = Round2(100 * float64(matched.Len()) / float64(jd.Len()))
	}

	return types.MatchResult{
		MatchPercentage: pct,
		MatchedSkills:   matched.Slice(),
		MissingSkills:   jd.Difference(resume).Slice(),
		ExtraSkills:     resume.Difference(jd).Slice(),
	}
}

// Round2 rounds half away from zero to two decimals (2/3 × 100 → 66.67).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
