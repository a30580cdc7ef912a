package domain

import "testing"

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name    string
		item    *ExtractedItem
		wantURL string
		wantOK  bool
	}{
		{
			name:   "nil item",
			wantOK: false,
		},
		{
			name: "direct URL returned verbatim",
			item: &ExtractedItem{
				DirectURL: "https://cdn.example/direct",
			},
			wantURL: "https://cdn.example/direct",
			wantOK:  true,
		},
		{
			name: "audio-only beats bundled video regardless of bitrate",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "u1", AudioCodec: "opus", AudioBitrate: 128},
					{URL: "u2", AudioCodec: "opus", AudioBitrate: 256},
					{URL: "u3", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 192},
				},
			},
			wantURL: "u2",
			wantOK:  true,
		},
		{
			name: "bundled fallback picks higher audio bitrate over total",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "u1", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 96, TotalBitrate: 300},
					{URL: "u2", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 128, TotalBitrate: 280},
				},
			},
			wantURL: "u2",
			wantOK:  true,
		},
		{
			name: "bundled tie on audio bitrate broken by total bitrate",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "u1", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 128, TotalBitrate: 280},
					{URL: "u2", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 128, TotalBitrate: 500},
				},
			},
			wantURL: "u2",
			wantOK:  true,
		},
		{
			name: "tie keeps first-encountered format",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "first", AudioCodec: "opus", AudioBitrate: 160},
					{URL: "second", AudioCodec: "opus", AudioBitrate: 160},
				},
			},
			wantURL: "first",
			wantOK:  true,
		},
		{
			name: "missing bitrate treated as zero",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "u1", AudioCodec: "opus"},
					{URL: "u2", AudioCodec: "opus", AudioBitrate: 48},
				},
			},
			wantURL: "u2",
			wantOK:  true,
		},
		{
			name: "formats without audio are unusable",
			item: &ExtractedItem{
				Formats: []Format{
					{URL: "u1", AudioCodec: "none", VideoCodec: "avc1", TotalBitrate: 900},
					{URL: "u2", VideoCodec: "vp9", TotalBitrate: 700},
				},
			},
			wantOK: false,
		},
		{
			name: "format without URL is skipped",
			item: &ExtractedItem{
				Formats: []Format{
					{AudioCodec: "opus", AudioBitrate: 999},
					{URL: "u2", AudioCodec: "opus", AudioBitrate: 48},
				},
			},
			wantURL: "u2",
			wantOK:  true,
		},
		{
			name:   "no direct URL and no formats",
			item:   &ExtractedItem{Title: "gone"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, ok := SelectFormat(tt.item)

			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if sel.StreamURL != tt.wantURL {
				t.Errorf("expected stream URL %q, got %q", tt.wantURL, sel.StreamURL)
			}
		})
	}
}

func TestSelectFormatMarksVideoFallback(t *testing.T) {
	sel, ok := SelectFormat(&ExtractedItem{
		Formats: []Format{
			{URL: "u1", AudioCodec: "mp4a", VideoCodec: "avc1", AudioBitrate: 128},
		},
	})
	if !ok {
		t.Fatal("expected a selection")
	}
	if !sel.HasVideo {
		t.Error("expected HasVideo to be set for bundled fallback")
	}
}

func TestPageURLPriority(t *testing.T) {
	tests := []struct {
		name string
		item ExtractedItem
		want string
	}{
		{
			name: "webpage reference first",
			item: ExtractedItem{WebpageURL: "w", OriginalURL: "o", DirectURL: "d", ID: "id123456789"},
			want: "w",
		},
		{
			name: "original reference second",
			item: ExtractedItem{OriginalURL: "o", DirectURL: "d", ID: "id123456789"},
			want: "o",
		},
		{
			name: "direct URL third",
			item: ExtractedItem{DirectURL: "d", ID: "id123456789"},
			want: "d",
		},
		{
			name: "synthesized from ID fourth",
			item: ExtractedItem{ID: "dQw4w9WgXcQ"},
			want: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name: "caller input as last resort",
			item: ExtractedItem{},
			want: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.PageURL("fallback"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
