package significance

import "github.com/Sumatoshi-tech/devrank/pkg/history"

// Annotate returns a copy of snap whose file changes carry the classifier's
// verdict. When useMessage is set the owning commit's subject is passed as the
// commit message.
func Annotate(snap *history.Snapshot, c *Classifier, useMessage bool) *history.Snapshot {
	out := history.NewSnapshot()
	out.Commits = append(out.Commits, snap.Commits...)

	for hash, st := range snap.Stats {
		out.Stats[hash] = st
	}

	subjects := make(map[string]string, len(snap.Commits))
	if useMessage {
		for _, commit := range snap.Commits {
			subjects[commit.Hash] = commit.Subject
		}
	}

	for hash, changes := range snap.Changes {
		annotated := make([]history.FileChange, len(changes))

		for i, fc := range changes {
			fc.Substantial = c.Classify(fc.Diff, fc.Path, subjects[hash])
			annotated[i] = fc
		}

		out.Changes[hash] = annotated
	}

	return out
}
