package rom

import "unsafe"

// checkAlign verifies that b's backing address is a multiple of align
// bytes, the raw-view-layer contract every borrow/borrow_mut entry
// point applies before touching section contents (§4.7, §9 "alignment
// traps"). A zero-length buffer has no address to check.
func checkAlign(b []byte, align int, op string) error {
	if len(b) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&b[0]))
	if addr%uintptr(align) != 0 {
		return newErr(KindMisaligned, op, "buffer address %#x is not %d-byte aligned", addr, align)
	}
	return nil
}
