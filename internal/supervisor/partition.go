package supervisor

// Partition splits total connections across procs processes as evenly
// as possible, each process receiving at least 1. When total is smaller
// than procs, fewer shares come back, one connection each.
func Partition(total, procs int) []int {
	if total <= 0 || procs <= 0 {
		return nil
	}
	if procs > total {
		procs = total
	}

	shares := make([]int, procs)
	base := total / procs
	rem := total % procs
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}
