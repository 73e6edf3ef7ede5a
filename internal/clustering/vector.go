package clustering

// BuildVector lays answers out as a dims-length vector where position i holds
// the answer to question i+1. Questions missing from answers get fill.
func BuildVector(answers map[int]int, dims int, fill float64) []float64 {
	v := make([]float64, dims)
	for i := range v {
		if a, ok := answers[i+1]; ok {
			v[i] = float64(a)
			continue
		}
		v[i] = fill
	}
	return v
}
