package rom

import (
	"testing"

	"github.com/ndskit/ndspack/lib/crc16"
)

func TestBannerOriginalRoundTrip(t *testing.T) {
	b := &Banner{
		Version: BannerOriginal,
		Titles:  []string{"JP", "EN", "FR", "DE", "IT", "ES"},
	}
	b.Palette[1] = 0x1234
	b.RecomputeCRCs(crc16.Checksum)

	got, err := ParseBanner(b.Bytes())
	if err != nil {
		t.Fatalf("ParseBanner: %v", err)
	}
	if got.Version != b.Version {
		t.Fatalf("version = %#x, want %#x", got.Version, b.Version)
	}
	for i, title := range b.Titles {
		if got.Titles[i] != title {
			t.Errorf("title %d = %q, want %q", i, got.Titles[i], title)
		}
	}
	if got.Palette[1] != 0x1234 {
		t.Errorf("palette[1] = %#04x, want 0x1234", got.Palette[1])
	}
	if got.CRCs[0] != b.CRCs[0] {
		t.Errorf("CRCs[0] = %#04x, want %#04x", got.CRCs[0], b.CRCs[0])
	}
}

func TestBannerKoreaHasEightTitleSlots(t *testing.T) {
	b := &Banner{
		Version: BannerKorea,
		Titles:  []string{"JP", "EN", "FR", "DE", "IT", "ES", "ZH", "KO"},
	}
	if b.Version.titleCount() != 8 {
		t.Fatalf("titleCount() = %d, want 8", b.Version.titleCount())
	}
	got, err := ParseBanner(b.Bytes())
	if err != nil {
		t.Fatalf("ParseBanner: %v", err)
	}
	if len(got.Titles) != 8 || got.Titles[7] != "KO" {
		t.Fatalf("titles = %v", got.Titles)
	}
}

func TestBannerKeyframePacking(t *testing.T) {
	kf := BannerKeyframe{Duration: 30, BitmapIndex: 5, PaletteIndex: 2, FlipH: true}
	got := parseBannerKeyframe(kf.pack())
	if got != kf {
		t.Fatalf("keyframe did not round trip: got %+v, want %+v", got, kf)
	}
}

func TestParseBannerRejectsUnknownVersion(t *testing.T) {
	b := &Banner{Version: BannerOriginal, Titles: make([]string, 6)}
	data := b.Bytes()
	data[0] = 0xAB
	data[1] = 0xCD
	if _, err := ParseBanner(data); !IsUnsupportedVersion(err) {
		t.Fatalf("expected UnsupportedVersion, got %v", err)
	}
}
