package domain

import "strings"

// Judge reports whether a submission answers the question correctly,
// dispatching on the question's judging mode. Unknown modes judge false.
func Judge(q Question, sub Submission) bool {
	switch q.Key.Mode {
	case JudgeText:
		return strings.EqualFold(strings.TrimSpace(sub.Text), q.Key.Text)
	case JudgeChoice:
		return q.Key.Index >= 0 && q.Key.Index < len(q.Options) && sub.Option == q.Key.Index
	}
	return false
}
