package vector

import "container/heap"

// resultQueue is a min-heap holding the best k results seen so far.
// The root is the current worst: lowest score, and among equal scores the highest ordinal.
type resultQueue []VectorResult

func (q resultQueue) Len() int { return len(q) }

func (q resultQueue) Less(i, j int) bool {
	if q[i].Score != q[j].Score {
		return q[i].Score < q[j].Score
	}
	return q[i].Ordinal > q[j].Ordinal
}

func (q resultQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *resultQueue) Push(x any) {
	*q = append(*q, x.(VectorResult))
}

func (q *resultQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// pushWithLimit keeps at most k entries.
func (q *resultQueue) pushWithLimit(item VectorResult, k int) {
	if q.Len() < k {
		heap.Push(q, item)
		return
	}
	root := (*q)[0]
	if item.Score > root.Score || (item.Score == root.Score && item.Ordinal < root.Ordinal) {
		(*q)[0] = item
		heap.Fix(q, 0)
	}
}
