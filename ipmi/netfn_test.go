package ipmi

import "testing"

func TestNetFnByteEncoding(t *testing.T) {
	b := netFnByte(uint8(NetFnApp), uint8(LunBMC))
	if b != 0x18 {
		t.Fatalf("netFnByte(App, BMC) = %#x, want 0x18", b)
	}
}

func TestNetFnIsResponse(t *testing.T) {
	if NetFnApp.IsResponse() {
		t.Fatalf("NetFnApp (request) reported as response")
	}
	if !NetFnAppResp.IsResponse() {
		t.Fatalf("NetFnAppResp (response) reported as request")
	}
}

func TestSplitNetFnByteRoundTrip(t *testing.T) {
	for netfn := uint8(0); netfn < 0x40; netfn++ {
		for lun := uint8(0); lun < 4; lun++ {
			b := netFnByte(netfn, lun)
			gotNetfn, gotLun := splitNetFnByte(b)
			if gotNetfn != netfn || gotLun != lun {
				t.Fatalf("round trip failed for netfn=%#x lun=%d: got netfn=%#x lun=%d", netfn, lun, gotNetfn, gotLun)
			}
		}
	}
}
