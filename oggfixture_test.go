package theoraclip

import (
	"io"
	"testing"
)

// memDataSource is an in-memory, seekable DataSource used to feed synthetic
// Ogg byte streams to bootstrap/seek/duration tests without a real file.
type memDataSource struct {
	data []byte
	pos  int64
}

func newMemDataSource(data []byte) *memDataSource {
	return &memDataSource{data: data}
}

func (m *memDataSource) Read(buf []byte) (int, error) {
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(buf, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memDataSource) SeekAbs(offset int64) error {
	m.pos = offset
	return nil
}

func (m *memDataSource) Size() (int64, bool) {
	return int64(len(m.data)), true
}

// feedAllPages runs a concatenated run of raw page bytes through sync
// (mimicking a container read) and hands every page libogg reassembles from
// it to stream.pageIn, in order.
func feedAllPages(t *testing.T, sync *syncState, stream *streamState, data []byte) {
	t.Helper()
	buf := sync.buffer(len(data))
	copy(buf, data)
	sync.wrote(len(data))

	for {
		page, status := sync.pageOut()
		switch status {
		case pageOK:
			stream.pageIn(page)
		case pageHole:
			continue
		case pageNeedMore:
			return
		}
	}
}
