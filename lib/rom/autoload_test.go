package rom

import "testing"

func TestAutoloadKindClassification(t *testing.T) {
	cases := []struct {
		base uint32
		want AutoloadKind
	}{
		{itcmBaseAddress, AutoloadITCM},
		{dtcmBaseAddress, AutoloadDTCM},
		{0x02000000, AutoloadUnknown},
	}
	for _, c := range cases {
		info := AutoloadInfo{BaseAddress: c.base}
		if got := info.Kind(); got != c.want {
			t.Errorf("Kind(%#08x) = %v, want %v", c.base, got, c.want)
		}
	}
}

func TestAutoloadInfoTableRoundTrip(t *testing.T) {
	infos := []AutoloadInfo{
		{BaseAddress: itcmBaseAddress, CodeSize: 0x400, BssSize: 0x100},
		{BaseAddress: dtcmBaseAddress, CodeSize: 0x200, BssSize: 0},
	}
	got, err := ParseAutoloadInfoTable(AutoloadInfoTableBytes(infos))
	if err != nil {
		t.Fatalf("ParseAutoloadInfoTable: %v", err)
	}
	for i := range infos {
		if got[i] != infos[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], infos[i])
		}
	}
}
