package questions

import "math/rand"

// Shuffle returns a copy of q with its choices permuted and CorrectIndex
// remapped, so shuffled.Choices[shuffled.CorrectIndex] == q.Choices[q.CorrectIndex].
func Shuffle(q Question, rng *rand.Rand) Question {
	out := q.Clone()
	if len(q.Choices) < 2 {
		return out
	}

	perm := rng.Perm(len(q.Choices))
	for newIdx, oldIdx := range perm {
		out.Choices[newIdx] = q.Choices[oldIdx]
		if oldIdx == q.CorrectIndex {
			out.CorrectIndex = newIdx
		}
	}
	return out
}
