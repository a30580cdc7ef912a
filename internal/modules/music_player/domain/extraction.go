package domain

// ItemKind tags the shape of an extraction result.
type ItemKind int

const (
	// ItemSingle is a fully extracted media item with a direct URL or a
	// format list.
	ItemSingle ItemKind = iota
	// ItemCollection is a playlist or mix carrying entries.
	ItemCollection
	// ItemFlat is a collection entry that was not fully extracted. It has
	// neither a direct URL nor formats and must be re-extracted through its
	// page reference before a format can be selected.
	ItemFlat
)

// Format is one candidate encoding of a media item.
type Format struct {
	URL          string
	AudioCodec   string  // "none" or empty when the encoding has no audio track
	VideoCodec   string  // "none" or empty when the encoding has no video track
	AudioBitrate float64 // kbps, 0 when unreported
	TotalBitrate float64 // kbps, 0 when unreported
}

// HasAudio reports whether the format carries a usable audio track.
func (f *Format) HasAudio() bool {
	return f.URL != "" && f.AudioCodec != "" && f.AudioCodec != "none"
}

// HasVideo reports whether the format carries a video track.
func (f *Format) HasVideo() bool {
	return f.VideoCodec != "" && f.VideoCodec != "none"
}

// ExtractedItem is the result of one extraction backend call.
// Only the fields matching Kind are populated: Entries for ItemCollection,
// DirectURL/Formats for ItemSingle, and page references for ItemFlat.
type ExtractedItem struct {
	Kind        ItemKind
	ID          string
	Title       string
	DirectURL   string
	WebpageURL  string
	OriginalURL string
	Formats     []Format
	Headers     map[string]string
	Entries     []*ExtractedItem
}

// PageURL derives a stable public reference for display and linking.
// The priority order guarantees a non-empty result as long as the caller
// supplies its original input as the fallback.
func (it *ExtractedItem) PageURL(fallback string) string {
	switch {
	case it.WebpageURL != "":
		return it.WebpageURL
	case it.OriginalURL != "":
		return it.OriginalURL
	case it.DirectURL != "":
		return it.DirectURL
	case it.ID != "":
		return "https://www.youtube.com/watch?v=" + it.ID
	}
	return fallback
}
