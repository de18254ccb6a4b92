package extract

import (
	"testing"

	"github.com/ByteMe6/rozetka-scrapper/models"
)

func TestAvailability_PageNotFound(t *testing.T) {
	// A thin error page: no product markers, localized 404 token present.
	content := `<html><body><h1>Сторінку не знайдено</h1><p>Помилка 404</p></body></html>`

	if got := Availability(content); got != models.StatusPageNotFound {
		t.Errorf("got %q, want %q", got, models.StatusPageNotFound)
	}
}

func TestAvailability_InvalidPage(t *testing.T) {
	// No product markers, no 404 token: some category or landing page.
	content := `<html><body><h1>Акції тижня</h1><div class="banner">Знижки</div></body></html>`

	if got := Availability(content); got != models.StatusInvalidPage {
		t.Errorf("got %q, want %q", got, models.StatusInvalidPage)
	}
}

func TestAvailability_OutOfStock(t *testing.T) {
	content := `<html><body>
		<div class="product-about">
			<p class="product-price__big"></p>
			<span class="status">Немає в наявності</span>
		</div>
	</body></html>`

	if got := Availability(content); got != models.StatusOutOfStock {
		t.Errorf("got %q, want %q", got, models.StatusOutOfStock)
	}
}

func TestAvailability_SoftMiss(t *testing.T) {
	// Markers present, in stock, but the template hid the price somewhere
	// the cascade cannot see. Soft miss, retry-eligible.
	content := `<html><body><div class="product-about" itemprop="price"></div></body></html>`

	if got := Availability(content); got != models.StatusNotFound {
		t.Errorf("got %q, want %q", got, models.StatusNotFound)
	}
}

func TestAvailability_NotFoundTokenOnProductPageIsNotA404(t *testing.T) {
	// A product page that merely mentions "not found" in a review must not
	// be classified as the site's 404 page.
	content := `<div class="product-price__big">1299</div><p>page not found щось у відгуку</p>`

	if got := Availability(content); got == models.StatusPageNotFound {
		t.Errorf("marker-bearing page classified as %q", got)
	}
}

func TestHasProductMarkers(t *testing.T) {
	if HasProductMarkers(`<h1>Просто сторінка</h1>`) {
		t.Error("marker reported on plain page")
	}
	if !HasProductMarkers(`<script type="application/ld+json">{}</script>`) {
		t.Error("jsonld marker not detected")
	}
	if !HasProductMarkers(`<p class="product-price__big">1</p>`) {
		t.Error("price-class marker not detected")
	}
}

func TestHasNotFoundToken(t *testing.T) {
	if !HasNotFoundToken("СТОРІНКУ НЕ ЗНАЙДЕНО") {
		t.Error("case-insensitive match failed")
	}
	if HasNotFoundToken("звичайна сторінка товару") {
		t.Error("false positive")
	}
}
