package pqgram

// Distance returns 1 - 2|a ∩ b| / (|a| + |b|) over the bag intersection.
// Two empty profiles are identical.
func Distance(a, b *Profile) float64 {
	total := a.Size() + b.Size()
	if total == 0 {
		return 0
	}
	return 1 - 2*float64(a.IntersectionSize(b))/float64(total)
}

// Similarity is 1 - Distance.
func Similarity(a, b *Profile) float64 {
	return 1 - Distance(a, b)
}
