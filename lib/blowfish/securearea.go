package blowfish

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// SecureAreaID is the plaintext marker at the start of a decrypted ARM9
// secure area.
var SecureAreaID = [8]byte{0xFF, 0xDE, 0xFF, 0xE7, 0xFF, 0xDE, 0xFF, 0xE7}

var encryObj = []byte("encryObj")

// SecureAreaSize is the length of the ARM9 secure area.
const SecureAreaSize = 0x800

// ErrSecureAreaTooShort is returned when the ARM9 buffer is shorter
// than SecureAreaSize.
var ErrSecureAreaTooShort = errors.New("blowfish: ARM9 is shorter than the secure area")

// ErrNotEncryObj is returned when a decrypted secure area does not
// begin with the "encryObj" token.
var ErrNotEncryObj = errors.New("blowfish: decrypted secure area does not start with \"encryObj\"")

// ErrMissingSecureAreaID is returned when EncryptSecureArea is called
// on an ARM9 buffer that is not currently plaintext.
var ErrMissingSecureAreaID = errors.New("blowfish: ARM9 does not start with the plaintext secure area ID")

// SeedFromGameCode derives the Blowfish mixing seed from the 4-byte
// little-endian gamecode.
func SeedFromGameCode(gameCode [4]byte) uint32 {
	return binary.LittleEndian.Uint32(gameCode[:])
}

// IsEncrypted reports whether arm9's secure area is currently encrypted
// (its first 8 bytes are not the plaintext secure-area ID).
func IsEncrypted(arm9 []byte) bool {
	if len(arm9) < 8 {
		return false
	}
	return !bytes.Equal(arm9[:8], SecureAreaID[:])
}

// DecryptSecureArea decrypts the first SecureAreaSize bytes of arm9 in
// place, using key (the ARM7 BIOS key blob) mixed with the gamecode
// seed. Level 2 undoes the outer layer covering only the first 8 bytes
// (the "encryObj" marker), then level 3 undoes the inner layer covering
// the whole secure area.
func DecryptSecureArea(arm9 []byte, key []byte, seed uint32) error {
	if len(arm9) < SecureAreaSize {
		return ErrSecureAreaTooShort
	}

	c2, err := New(key, seed, 2)
	if err != nil {
		return err
	}
	if err := c2.Decrypt(arm9[:8]); err != nil {
		return err
	}

	c3, err := New(key, seed, 3)
	if err != nil {
		return err
	}
	if err := c3.Decrypt(arm9[:SecureAreaSize]); err != nil {
		return err
	}

	if !bytes.Equal(arm9[:8], encryObj) {
		return ErrNotEncryObj
	}
	copy(arm9[:8], SecureAreaID[:])
	return nil
}

// EncryptSecureArea is the inverse of DecryptSecureArea: level 3 applies
// the inner layer across the whole secure area first, then level 2
// applies the outer layer to the first 8 bytes.
func EncryptSecureArea(arm9 []byte, key []byte, seed uint32) error {
	if len(arm9) < SecureAreaSize {
		return ErrSecureAreaTooShort
	}
	if !bytes.Equal(arm9[:8], SecureAreaID[:]) {
		return ErrMissingSecureAreaID
	}
	copy(arm9[:8], encryObj)

	c3, err := New(key, seed, 3)
	if err != nil {
		return err
	}
	if err := c3.Encrypt(arm9[:SecureAreaSize]); err != nil {
		return err
	}

	c2, err := New(key, seed, 2)
	if err != nil {
		return err
	}
	return c2.Encrypt(arm9[:8])
}
