package pdf

// tally is a signature frequency count that remembers first-seen order
type tally struct {
	counts map[Signature]int
	order  []Signature
}

func newTally() *tally {
	return &tally{counts: make(map[Signature]int)}
}

func (t *tally) add(sigs []Signature) {
	for _, s := range sigs {
		if _, ok := t.counts[s]; !ok {
			t.order = append(t.order, s)
		}
		t.counts[s]++
	}
}

// detect returns every signature whose count reaches sampleCount*ratio,
// in first-seen order
func (t *tally) detect(sampleCount int, ratio float64) []Detection {
	out := []Detection{}
	if sampleCount <= 0 {
		return out
	}
	threshold := float64(sampleCount) * ratio
	for _, s := range t.order {
		n := t.counts[s]
		if float64(n) >= threshold {
			out = append(out, Detection{Candidate: CandidateFromSignature(s), Count: n})
		}
	}
	return out
}

// Detect counts signatures collected from sampleCount pages and returns
// those occurring at least sampleCount*ratio times. Every occurrence counts,
// so a signature repeated on one page counts more than once. The result is
// never nil and is empty when nothing qualifies or sampleCount is zero.
func Detect(sigs []Signature, sampleCount int, ratio float64) []Candidate {
	t := newTally()
	t.add(sigs)
	dets := t.detect(sampleCount, ratio)
	out := make([]Candidate, len(dets))
	for i, d := range dets {
		out[i] = d.Candidate
	}
	return out
}
