package project

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/ndskit/ndspack/lib/logo"
	"github.com/ndskit/ndspack/lib/rom"
)

// invalidColor builds a rom.Error of kind InvalidImage, so callers
// composing on the project boundary can branch with rom.IsInvalidImage
// the same way they do on core rom package errors.
func invalidColor(op, format string, args ...any) error {
	return &rom.Error{Kind: rom.KindInvalidImage, Op: op, Message: fmt.Sprintf(format, args...)}
}

// DecodeHeaderLogoPNG reads a 104x16 PNG where every pixel's R, G, and
// B channels are equal and either 0x00 or 0xFF (§6: header logo
// source). Any other color fails with a KindInvalidImage error.
func DecodeHeaderLogoPNG(path string) (logo.Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return logo.Bitmap{}, fmt.Errorf("project: opening %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return logo.Bitmap{}, fmt.Errorf("project: decoding %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() != logo.Width || b.Dy() != logo.Height {
		return logo.Bitmap{}, invalidColor("project.logo", "header logo must be %dx%d, got %dx%d", logo.Width, logo.Height, b.Dx(), b.Dy())
	}

	var bmp logo.Bitmap
	for y := 0; y < logo.Height; y++ {
		for x := 0; x < logo.Width; x++ {
			r, g, bch, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8 := byte(r>>8), byte(g>>8), byte(bch>>8)
			if r8 != g8 || g8 != b8 || (r8 != 0x00 && r8 != 0xFF) {
				return logo.Bitmap{}, invalidColor("project.logo", "header logo pixel (%d,%d) is not pure black/white: #%02x%02x%02x", x, y, r8, g8, b8)
			}
			bmp.Set(x, y, r8 == 0xFF)
		}
	}
	return bmp, nil
}

// EncodeHeaderLogoPNG writes bmp as a 104x16 black-and-white PNG.
func EncodeHeaderLogoPNG(path string, bmp logo.Bitmap) error {
	img := image.NewGray(image.Rect(0, 0, logo.Width, logo.Height))
	for y := 0; y < logo.Height; y++ {
		for x := 0; x < logo.Width; x++ {
			v := byte(0)
			if bmp.Get(x, y) {
				v = 0xFF
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("project: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("project: encoding %s: %w", path, err)
	}
	return nil
}

// quantize5 maps an 8-bit channel down to the DS's 5-bit-per-channel
// range (§6: banner palette colors are quantized to 5 bits/channel).
func quantize5(c uint8) uint8 { return c >> 3 }

// pack15BGR packs three 5-bit channels into the DS's 15-bit BGR555
// word: bit 15 unused, bits 10-14 blue, 5-9 green, 0-4 red.
func pack15BGR(r, g, b uint8) uint16 {
	return uint16(quantize5(r)) | uint16(quantize5(g))<<5 | uint16(quantize5(b))<<10
}

func unpack15BGR(c uint16) (r, g, b uint8) {
	r = uint8(c&0x1F) << 3
	g = uint8((c>>5)&0x1F) << 3
	b = uint8((c>>10)&0x1F) << 3
	return
}

// DecodeBannerIconPNG reads a 32x32 icon PNG and a 16x1 palette PNG
// (§6: banner icon source). Each icon pixel's color must appear,
// exactly after 5-bit quantization, in the palette; otherwise it fails
// with a KindInvalidImage error. Returns the 4bpp tile-packed icon bytes and the
// 16-entry BGR555 palette, index 0 reserved as transparent.
func DecodeBannerIconPNG(iconPath, palettePath string) (icon [0x200]byte, palette [16]uint16, err error) {
	palImg, err := decodePNG(palettePath)
	if err != nil {
		return icon, palette, err
	}
	pb := palImg.Bounds()
	if pb.Dx() != 16 || pb.Dy() != 1 {
		return icon, palette, invalidColor("project.banner_icon", "banner palette must be 16x1, got %dx%d", pb.Dx(), pb.Dy())
	}
	for i := 0; i < 16; i++ {
		r, g, b, _ := palImg.At(pb.Min.X+i, pb.Min.Y).RGBA()
		palette[i] = pack15BGR(byte(r>>8), byte(g>>8), byte(b>>8))
	}

	iconImg, err := decodePNG(iconPath)
	if err != nil {
		return icon, palette, err
	}
	ib := iconImg.Bounds()
	if ib.Dx() != 32 || ib.Dy() != 32 {
		return icon, palette, invalidColor("project.banner_icon", "banner icon must be 32x32, got %dx%d", ib.Dx(), ib.Dy())
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			r, g, b, _ := iconImg.At(ib.Min.X+x, ib.Min.Y+y).RGBA()
			want := pack15BGR(byte(r>>8), byte(g>>8), byte(b>>8))
			idx := -1
			for i, c := range palette {
				if c == want {
					idx = i
					break
				}
			}
			if idx < 0 {
				return icon, palette, invalidColor("project.banner_icon", "icon pixel (%d,%d) not present in palette", x, y)
			}
			setIconNibble(&icon, x, y, byte(idx))
		}
	}
	return icon, palette, nil
}

// setIconNibble writes a 4-bit palette index into the icon's 8x8-tiled
// byte layout, matching how the banner's icon bitmap is stored on the
// cartridge: 32x32 pixels as 4x4 tiles of 8x8 pixels, 4bpp, low nibble
// first.
func setIconNibble(icon *[0x200]byte, x, y int, idx byte) {
	tileX, tileY := x/8, y/8
	inX, inY := x%8, y%8
	tileIndex := tileY*4 + tileX
	byteIndex := tileIndex*32 + inY*4 + inX/2
	if x%2 == 0 {
		icon[byteIndex] = (icon[byteIndex] &^ 0x0F) | (idx & 0x0F)
	} else {
		icon[byteIndex] = (icon[byteIndex] &^ 0xF0) | (idx<<4)&0xF0
	}
}

func getIconNibble(icon [0x200]byte, x, y int) byte {
	tileX, tileY := x/8, y/8
	inX, inY := x%8, y%8
	tileIndex := tileY*4 + tileX
	byteIndex := tileIndex*32 + inY*4 + inX/2
	if x%2 == 0 {
		return icon[byteIndex] & 0x0F
	}
	return (icon[byteIndex] >> 4) & 0x0F
}

// EncodeBannerIconPNG writes icon/palette back out as a 32x32 icon PNG
// and a 16x1 palette PNG.
func EncodeBannerIconPNG(iconPath, palettePath string, icon [0x200]byte, palette [16]uint16) error {
	palImg := image.NewRGBA(image.Rect(0, 0, 16, 1))
	for i, c := range palette {
		r, g, b := unpack15BGR(c)
		palImg.Set(i, 0, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	if err := encodePNG(palettePath, palImg); err != nil {
		return err
	}

	iconImg := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			idx := getIconNibble(icon, x, y)
			r, g, b := unpack15BGR(palette[idx])
			iconImg.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}
	return encodePNG(iconPath, iconImg)
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("project: opening %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("project: decoding %s: %w", path, err)
	}
	return img, nil
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("project: creating %s: %w", path, err)
	}
	defer f.Close()
	return png.Encode(f, img)
}
