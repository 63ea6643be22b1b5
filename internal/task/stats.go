package task

import "math"

// Stats 进度统计
// Stats is the progress block derived from a list.
type Stats struct {
	Total     int
	DoneCount int
	Percent   int
}

// ComputeStats counts done tasks. Percent is rounded half-up and 0 for an empty list.
func ComputeStats(list []Task) Stats {
	s := Stats{Total: len(list)}
	for _, t := range list {
		if t.Done {
			s.DoneCount++
		}
	}
	if s.Total > 0 {
		s.Percent = int(math.Floor(float64(s.DoneCount)/float64(s.Total)*100 + 0.5))
	}
	return s
}
