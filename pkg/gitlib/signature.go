package gitlib

import "time"

// Signature is a commit author or committer.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}
