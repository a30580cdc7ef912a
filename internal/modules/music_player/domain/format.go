package domain

// Selection is the winning encoding picked from an extracted item.
type Selection struct {
	StreamURL    string
	AudioBitrate float64
	TotalBitrate float64
	HasVideo     bool
}

// SelectFormat picks the single best playable encoding of an item.
//
// A direct stream URL (no format list) is returned verbatim. Otherwise
// audio-only encodings are preferred, highest audio bitrate first; encodings
// bundling video are the fallback, compared by (audio bitrate, total bitrate).
// Missing bitrates count as zero and ties keep the first-encountered format,
// so the result is deterministic for a given input order.
func SelectFormat(item *ExtractedItem) (Selection, bool) {
	if item == nil {
		return Selection{}, false
	}

	if item.DirectURL != "" && len(item.Formats) == 0 {
		return Selection{StreamURL: item.DirectURL}, true
	}

	var (
		audioOnly  *Format
		audioVideo *Format
	)
	for i := range item.Formats {
		f := &item.Formats[i]
		if !f.HasAudio() {
			continue
		}
		if !f.HasVideo() {
			if audioOnly == nil || f.AudioBitrate > audioOnly.AudioBitrate {
				audioOnly = f
			}
			continue
		}
		if audioVideo == nil || lessAV(audioVideo, f) {
			audioVideo = f
		}
	}

	if audioOnly != nil {
		return Selection{
			StreamURL:    audioOnly.URL,
			AudioBitrate: audioOnly.AudioBitrate,
			TotalBitrate: audioOnly.TotalBitrate,
		}, true
	}
	if audioVideo != nil {
		return Selection{
			StreamURL:    audioVideo.URL,
			AudioBitrate: audioVideo.AudioBitrate,
			TotalBitrate: audioVideo.TotalBitrate,
			HasVideo:     true,
		}, true
	}

	return Selection{}, false
}

// lessAV reports whether candidate beats current on the
// (audio bitrate, total bitrate) lexicographic pair.
func lessAV(current, candidate *Format) bool {
	if candidate.AudioBitrate != current.AudioBitrate {
		return candidate.AudioBitrate > current.AudioBitrate
	}
	return candidate.TotalBitrate > current.TotalBitrate
}
