package browser

import (
	"fmt"
	"math/rand"
)

// Identity is the immutable fingerprint one pooled context presents to the
// target site: user-agent, viewport, locale, timezone, geolocation and
// reported hardware specs. Identities are built once at pool initialization
// and never change for the lifetime of the context.
type Identity struct {
	Slot                int
	UserAgent           string
	ViewportWidth       int
	ViewportHeight      int
	Locale              string
	AcceptLanguage      string
	Timezone            string
	Latitude            float64
	Longitude           float64
	HardwareConcurrency int
	DeviceMemoryGB      int
}

// Rotation tables. Lengths are pairwise co-prime so that cycling each table
// by slot number keeps the combined fingerprint distinct for any realistic
// pool size.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
}

var viewports = [][2]int{
	{1920, 1080},
	{1536, 864},
	{1440, 900},
	{1366, 768},
}

var locales = []struct {
	locale         string
	acceptLanguage string
	timezone       string
}{
	{"uk-UA", "uk-UA,uk;q=0.9,en-US;q=0.8,en;q=0.7", "Europe/Kyiv"},
	{"uk-UA", "uk-UA,ru;q=0.9,en;q=0.8", "Europe/Kyiv"},
	{"ru-UA", "ru-UA,ru;q=0.9,uk;q=0.8,en;q=0.7", "Europe/Kyiv"},
}

// City centers the geolocation jitter is anchored to.
var geoPoints = [][2]float64{
	{50.4501, 30.5234}, // Kyiv
	{49.8397, 24.0297}, // Lviv
	{46.4825, 30.7233}, // Odesa
	{49.9935, 36.2304}, // Kharkiv
	{48.4647, 35.0462}, // Dnipro
	{50.6199, 26.2516}, // Rivne
	{49.4444, 32.0598}, // Cherkasy
}

var hardwareConcurrencies = []int{4, 8, 12, 16}
var deviceMemories = []int{4, 8, 16}

// NewIdentity builds the identity for a pool slot. The same slot always
// yields the same identity: tables are indexed cyclically and the
// geolocation jitter is seeded by the slot number.
func NewIdentity(slot int) Identity {
	rng := rand.New(rand.NewSource(int64(slot)))
	loc := locales[slot%len(locales)]
	vp := viewports[slot%len(viewports)]
	geo := geoPoints[slot%len(geoPoints)]

	return Identity{
		Slot:                slot,
		UserAgent:           userAgents[slot%len(userAgents)],
		ViewportWidth:       vp[0],
		ViewportHeight:      vp[1],
		Locale:              loc.locale,
		AcceptLanguage:      loc.acceptLanguage,
		Timezone:            loc.timezone,
		Latitude:            geo[0] + (rng.Float64()-0.5)*0.04,
		Longitude:           geo[1] + (rng.Float64()-0.5)*0.04,
		HardwareConcurrency: hardwareConcurrencies[slot%len(hardwareConcurrencies)],
		DeviceMemoryGB:      deviceMemories[slot%len(deviceMemories)],
	}
}

// patchScript returns the JS injected before every navigation to make the
// page report this identity's hardware and geolocation instead of the
// host machine's.
func (id Identity) patchScript() string {
	return fmt.Sprintf(`() => {
	Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
	Object.defineProperty(navigator, 'deviceMemory', { get: () => %d });
	Object.defineProperty(navigator, 'language', { get: () => %q });
	const coords = { latitude: %f, longitude: %f, accuracy: 40,
		altitude: null, altitudeAccuracy: null, heading: null, speed: null };
	if (navigator.geolocation) {
		navigator.geolocation.getCurrentPosition = (ok) =>
			ok({ coords: coords, timestamp: Date.now() });
		navigator.geolocation.watchPosition = (ok) => {
			ok({ coords: coords, timestamp: Date.now() });
			return 0;
		};
	}
}`, id.HardwareConcurrency, id.DeviceMemoryGB, id.Locale, id.Latitude, id.Longitude)
}
