package control

import "testing"

func TestHandleRawRoundTrip(t *testing.T) {
	for _, raw := range []uint32{0, 1, 5, 4096, 0xffffffff} {
		if got := NewCRTC(raw).Raw(); got != raw {
			t.Errorf("CRTC round trip of %d gave %d", raw, got)
		}
		if got := NewConnector(raw).Raw(); got != raw {
			t.Errorf("Connector round trip of %d gave %d", raw, got)
		}
		if got := NewEncoder(raw).Raw(); got != raw {
			t.Errorf("Encoder round trip of %d gave %d", raw, got)
		}
		if got := NewFramebuffer(raw).Raw(); got != raw {
			t.Errorf("Framebuffer round trip of %d gave %d", raw, got)
		}
		if got := NewPlane(raw).Raw(); got != raw {
			t.Errorf("Plane round trip of %d gave %d", raw, got)
		}
	}
}

func TestObjectTypeTagsAreDistinct(t *testing.T) {
	handles := []Resource{
		NewCRTC(1), NewConnector(1), NewEncoder(1), NewFramebuffer(1), NewPlane(1),
	}
	seen := map[uint32]bool{}
	for _, h := range handles {
		tag := h.ObjectType()
		if seen[tag] {
			t.Errorf("object tag %#x assigned to more than one handle type", tag)
		}
		seen[tag] = true
	}
	if NewCRTC(1).ObjectType() != ObjectCRTC {
		t.Error("CRTC handle must carry the CRTC object tag")
	}
	if NewConnector(1).ObjectType() != ObjectConnector {
		t.Error("Connector handle must carry the connector object tag")
	}
}

func TestHandleStringIsTagged(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{NewCRTC(5).String(), "crtc(5)"},
		{NewConnector(2).String(), "connector(2)"},
		{NewEncoder(7).String(), "encoder(7)"},
		{NewFramebuffer(9).String(), "fb(9)"},
		{NewPlane(31).String(), "plane(31)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
