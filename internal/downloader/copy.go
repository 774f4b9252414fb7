package downloader

import "io"

// meteredWriter reports every successful write to onWrite, which feeds the
// merge bar while segments stream into the artifact.
type meteredWriter struct {
	w       io.Writer
	onWrite func(n int64)
}

func (m meteredWriter) Write(p []byte) (int, error) {
	n, err := m.w.Write(p)
	if n > 0 && m.onWrite != nil {
		m.onWrite(int64(n))
	}
	return n, err
}

// copySegment streams one segment into dst.
func copySegment(dst io.Writer, src io.Reader, onWrite func(int64)) (int64, error) {
	return io.Copy(meteredWriter{w: dst, onWrite: onWrite}, src)
}
