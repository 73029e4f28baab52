package search

// ChunkIDs splits ids into consecutive groups of at most size elements.
// A non-positive size falls back to AnyOfLimit.
func ChunkIDs(ids []uint, size int) [][]uint {
	if size <= 0 {
		size = AnyOfLimit
	}
	var chunks [][]uint
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
