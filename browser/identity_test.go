package browser

import (
	"math"
	"testing"
)

func TestNewIdentity_Deterministic(t *testing.T) {
	for slot := 0; slot < 8; slot++ {
		a := NewIdentity(slot)
		b := NewIdentity(slot)
		if a != b {
			t.Errorf("slot %d produced two different identities: %+v vs %+v", slot, a, b)
		}
	}
}

func TestNewIdentity_DistinctSlots(t *testing.T) {
	const k = 8
	seen := make(map[Identity]int, k)
	for slot := 0; slot < k; slot++ {
		id := NewIdentity(slot)
		id.Slot = 0 // compare the fingerprint itself, not the slot label
		if prev, dup := seen[id]; dup {
			t.Errorf("slots %d and %d collide on identity: %+v", prev, slot, id)
		}
		seen[id] = slot
	}
}

func TestNewIdentity_GeolocationJitterBounded(t *testing.T) {
	for slot := 0; slot < len(geoPoints); slot++ {
		id := NewIdentity(slot)
		base := geoPoints[slot%len(geoPoints)]
		if math.Abs(id.Latitude-base[0]) > 0.02 {
			t.Errorf("slot %d latitude jitter too large: %f vs base %f", slot, id.Latitude, base[0])
		}
		if math.Abs(id.Longitude-base[1]) > 0.02 {
			t.Errorf("slot %d longitude jitter too large: %f vs base %f", slot, id.Longitude, base[1])
		}
		if id.Latitude == base[0] && id.Longitude == base[1] {
			t.Errorf("slot %d geolocation not jittered at all", slot)
		}
	}
}

func TestNewIdentity_PopulatedFields(t *testing.T) {
	id := NewIdentity(3)
	if id.UserAgent == "" || id.Timezone == "" || id.AcceptLanguage == "" {
		t.Fatalf("identity has empty fields: %+v", id)
	}
	if id.ViewportWidth <= 0 || id.ViewportHeight <= 0 {
		t.Fatalf("identity has empty viewport: %+v", id)
	}
	if id.HardwareConcurrency <= 0 || id.DeviceMemoryGB <= 0 {
		t.Fatalf("identity has empty hardware specs: %+v", id)
	}
	if id.patchScript() == "" {
		t.Fatal("patch script is empty")
	}
}
