package icon

import (
	"bytes"
	"testing"
)

func TestDataURL_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		icon Icon
		tag  string
	}{
		{"extraction", Icon{MIME: "image/png", Source: SourceExtraction, Version: 3, Data: []byte{1, 2, 3}}, "extraction=v3"},
		{"user file", Icon{MIME: "image/svg+xml", Source: SourceUserFile, Version: 1, Data: []byte("<svg/>")}, "source=user-file-v1"},
		{"web", Icon{MIME: "image/x-icon", Source: SourceWeb, Version: 1, Data: []byte{0, 0, 1, 0}}, "source=web-v1"},
		{"web cache", Icon{MIME: "image/webp", Source: SourceWebCache, Version: 1, Data: []byte{9}}, "source=web-cache-v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := tt.icon.DataURL()
			want := "data:" + tt.icon.MIME + ";" + tt.tag + ";base64,"
			if len(url) < len(want) || url[:len(want)] != want {
				t.Fatalf("data URL %q does not start with %q", url, want)
			}

			parsed, err := ParseDataURL(url)
			if err != nil {
				t.Fatalf("ParseDataURL: %v", err)
			}
			if parsed.MIME != tt.icon.MIME || parsed.Source != tt.icon.Source || parsed.Version != tt.icon.Version {
				t.Errorf("parsed %+v, want %+v", parsed, tt.icon)
			}
			if !bytes.Equal(parsed.Data, tt.icon.Data) {
				t.Errorf("payload changed in round trip")
			}
		})
	}
}

func TestParseDataURL_Rejects(t *testing.T) {
	bad := []string{
		"",
		"image/png;extraction=v3;base64,AA==",
		"data:image/png;base64,AA==",
		"data:image/png;extraction=vX;base64,AA==",
		"data:image/png;source=carrier-pigeon-v1;base64,AA==",
		"data:image/png;extraction=v3;base64",
		"data:image/png;extraction=v3;base64,!!!",
	}
	for _, s := range bad {
		if _, err := ParseDataURL(s); err == nil {
			t.Errorf("ParseDataURL(%q): expected error", s)
		}
	}
}

func TestStale(t *testing.T) {
	data := []byte{1}
	tests := []struct {
		name string
		icon *Icon
		want bool
	}{
		{"nil", nil, true},
		{"empty payload", &Icon{Source: SourceWeb, Version: 1}, true},
		{"current extraction", &Icon{Source: SourceExtraction, Version: ExtractionVersion, Data: data}, false},
		{"old extraction", &Icon{Source: SourceExtraction, Version: ExtractionVersion - 1, Data: data}, true},
		{"web", &Icon{Source: SourceWeb, Version: 1, Data: data}, false},
		{"user file", &Icon{Source: SourceUserFile, Version: 1, Data: data}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.icon.Stale(); got != tt.want {
				t.Errorf("Stale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtByMIME(t *testing.T) {
	tests := []struct{ mime, want string }{
		{"image/svg+xml", "svg"},
		{"image/svg+xml; charset=utf-8", "svg"},
		{"image/x-icon", "ico"},
		{"image/vnd.microsoft.icon", "ico"},
		{"image/webp", "webp"},
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"application/octet-stream", "png"},
	}
	for _, tt := range tests {
		if got := extByMIME(tt.mime); got != tt.want {
			t.Errorf("extByMIME(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}
