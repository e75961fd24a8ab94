package rom

import (
	"bytes"
	"testing"

	"github.com/ndskit/ndspack/lib/hmacsha1"
	"github.com/ndskit/ndspack/lib/logo"
)

func buildSyntheticROM() *ROM {
	arm9 := &Program{
		BaseAddress: 0x02000000,
		Entry:       0x02000100,
		Code:        bytes.Repeat([]byte{0xA9}, 0x100),
	}
	arm7 := &Program{
		BaseAddress: 0x02380000,
		Entry:       0x02380100,
		Code:        bytes.Repeat([]byte{0xA7}, 0x80),
	}

	files := &FileTreeNode{
		IsDir: true,
		DirID: RootDirID,
		Children: []*FileTreeNode{
			{Name: "one.bin", FileID: 0, Contents: bytes.Repeat([]byte{0x11}, 16)},
			{Name: "two.bin", FileID: 1, Contents: bytes.Repeat([]byte{0x22}, 32)},
		},
	}

	return &ROM{
		Header: &Header{
			Title:     "NDSPACK",
			GameCode:  "ABCE",
			MakerCode: "01",
			UnitCode:  0x00,
		},
		HeaderLogo: logo.Bitmap{},
		ARM9:       arm9,
		ARM7:       arm7,
		Banner: &Banner{
			Version: BannerOriginal,
			Titles:  []string{"A", "B", "C", "D", "E", "F"},
		},
		Files: files,
	}
}

func TestAssembleExtractRoundTrip(t *testing.T) {
	rom := buildSyntheticROM()

	raw, err := Assemble(rom, AssembleOptions{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(raw) < HeaderSize {
		t.Fatalf("assembled image shorter than header size: %d", len(raw))
	}

	got, err := Extract(raw, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got.Header.Title != "NDSPACK" || got.Header.GameCode != "ABCE" || got.Header.MakerCode != "01" {
		t.Fatalf("header identity mismatch: %+v", got.Header)
	}
	if !bytes.Equal(got.ARM9.Code, rom.ARM9.Code) {
		t.Fatalf("ARM9 code mismatch: got %x, want %x", got.ARM9.Code, rom.ARM9.Code)
	}
	if !bytes.Equal(got.ARM7.Code, rom.ARM7.Code) {
		t.Fatalf("ARM7 code mismatch: got %x, want %x", got.ARM7.Code, rom.ARM7.Code)
	}
	if got.ARM9.Entry != rom.ARM9.Entry || got.ARM9.BaseAddress != rom.ARM9.BaseAddress {
		t.Fatalf("ARM9 offsets mismatch: got %+v", got.ARM9)
	}

	if len(got.Files.Children) != 2 {
		t.Fatalf("file tree has %d children, want 2", len(got.Files.Children))
	}
	byName := map[string]*FileTreeNode{}
	for _, c := range got.Files.Children {
		byName[c.Name] = c
	}
	if !bytes.Equal(byName["one.bin"].Contents, rom.Files.Children[0].Contents) {
		t.Fatalf("one.bin contents mismatch")
	}
	if !bytes.Equal(byName["two.bin"].Contents, rom.Files.Children[1].Contents) {
		t.Fatalf("two.bin contents mismatch")
	}

	if got.Banner == nil || got.Banner.Titles[0] != "A" {
		t.Fatalf("banner not round-tripped: %+v", got.Banner)
	}

	if got.Header.RomSize != uint32(len(raw)) {
		t.Fatalf("RomSize = %d, want %d", got.Header.RomSize, len(raw))
	}
	if got.Header.Capacity != CapacityForSize(uint32(len(raw))) {
		t.Fatalf("Capacity = %d, want %d", got.Header.Capacity, CapacityForSize(uint32(len(raw))))
	}
}

func TestAssembleExtractRoundTripWithOverlaysAndPathOrder(t *testing.T) {
	rom := buildSyntheticROM()
	rom.ARM9Overlays = []Overlay{
		{Entry: OverlayEntry{ID: 0, BaseAddr: 0x02100000, FileID: 2}, Code: bytes.Repeat([]byte{0x33}, 24)},
	}

	raw, err := Assemble(rom, AssembleOptions{
		PathOrder: [][]string{{"two.bin"}, {"one.bin"}},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got, err := Extract(raw, ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(got.ARM9Overlays) != 1 {
		t.Fatalf("got %d ARM9 overlays, want 1", len(got.ARM9Overlays))
	}
	if !bytes.Equal(got.ARM9Overlays[0].Code, rom.ARM9Overlays[0].Code) {
		t.Fatalf("overlay code mismatch: got %x, want %x", got.ARM9Overlays[0].Code, rom.ARM9Overlays[0].Code)
	}
}

func TestAssembleComputesPerOverlaySignatures(t *testing.T) {
	rom := buildSyntheticROM()
	rom.ARM9Overlays = []Overlay{
		{Entry: OverlayEntry{ID: 0, BaseAddr: 0x02100000, FileID: 2}, Code: bytes.Repeat([]byte{0x33}, 24)},
		{Entry: OverlayEntry{ID: 1, BaseAddr: 0x02101000, FileID: 3}, Code: bytes.Repeat([]byte{0x44}, 40)},
	}
	rom.ARM9.Footer = &ARM9Footer{}
	key := []byte("overlay-hmac-key")

	raw, err := Assemble(rom, AssembleOptions{HMACKey: key})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if rom.ARM9.Footer.OverlaySignaturesOffset == 0 {
		t.Fatal("OverlaySignaturesOffset was not set")
	}

	want := OverlaySignaturesBytes(rom.ARM9Overlays, key)
	off := rom.ARM9.Footer.OverlaySignaturesOffset
	got := raw[off : off+uint32(len(want))]
	if !bytes.Equal(got, want) {
		t.Fatalf("overlay signature table mismatch: got %x, want %x", got, want)
	}

	for i, ov := range rom.ARM9Overlays {
		sig := hmacsha1.Sign(key, ov.Code)
		entry := got[i*hmacsha1.Size : (i+1)*hmacsha1.Size]
		if !bytes.Equal(entry, sig[:]) {
			t.Fatalf("overlay %d signature mismatch: got %x, want %x", i, entry, sig)
		}
	}
}
