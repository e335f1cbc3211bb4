package theoraclip

// durationProbeWindows bounds how many growing suffix windows probeDuration
// re-scans before giving up and reporting the duration as unknown, matching
// the original player's duration scan.
const durationProbeWindows = 50

const durationProbeWindowSize = 4096

// probeDuration re-scans growing suffix windows of the data source — window
// i covers the last durationProbeWindowSize*i bytes, re-read from scratch
// each time rather than advancing a fixed-size cursor — looking for pages
// belonging to the video stream. Each such page with a non-negative granule
// resets framesCount to the decoded frame number it implies; each
// subsequent video-stream page without one (a trailing delta frame the
// window's last granule didn't cover) adds one more, a known overcounting
// approximation inherited from the original scan rather than a defect to
// correct. It returns ok=false if no video-stream page ever carries a
// granule within the window budget.
func probeDuration(src DataSource, video videoCodec, videoSerial uint32) (framesCount int64, ok bool) {
	size, known := src.Size()
	if !known || size == 0 {
		return 0, false
	}

	sync := newSyncState()
	defer sync.clear()

	framesCount = -1

	for i := int64(1); i <= durationProbeWindows; i++ {
		windowSize := durationProbeWindowSize * i
		offset := size - windowSize
		if offset < 0 {
			offset = 0
		}
		if err := src.SeekAbs(offset); err != nil {
			break
		}
		sync.reset()

		toRead := windowSize
		if size < toRead {
			toRead = size
		}
		buf := sync.buffer(int(toRead))
		n, _ := src.Read(buf)
		if n > 0 {
			sync.wrote(n)
		}

		for {
			page, status := sync.pageOut()
			if status == pageNeedMore {
				break
			}
			if status == pageHole {
				continue
			}
			if page.serial() != videoSerial {
				continue
			}
			if g := page.granule(); g >= 0 {
				framesCount = video.GranuleFrame(g) + 1
			} else if framesCount > 0 {
				framesCount++ // trailing delta frame past the last granule seen
			}
		}

		if framesCount > 0 || size < windowSize {
			break
		}
	}

	if framesCount <= 0 {
		return 0, false
	}
	return framesCount, true
}
