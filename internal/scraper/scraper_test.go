package scraper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nboe-meetings/internal/dom"
)

const listingURL = "https://www.nps.k12.nj.us/board-of-education/meetings/"

func loadFixture(t *testing.T, name string) dom.Node {
	t.Helper()

	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	doc, err := dom.Parse(f)
	require.NoError(t, err)
	return doc
}

func TestParseListingFixture(t *testing.T) {
	doc := loadFixture(t, "newnj_nbe.html")

	listing, err := NewListingParser(nil).ParseListing(doc, listingURL)
	require.NoError(t, err)

	assert.Equal(t, 24, listing.Rows)
	assert.Len(t, listing.Requests, 24)
	assert.Empty(t, listing.Skipped)

	first := listing.Requests[0]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, "https://www.nps.k12.nj.us/events/regular-business-meeting-07-19-2022/", first.URL)
	assert.Equal(t, []string{"Virtual"}, first.LocationFragments)

	retreat := listing.Requests[4]
	assert.Equal(t, "https://www.nps.k12.nj.us/events/nboe-retreat-05-20-2023/", retreat.URL)

	// "10<sup>th</sup> Floor" приходит двумя фрагментами
	assert.Equal(t, []string{"Board Office, 2 Cedar St, 10", " Floor"}, retreat.LocationFragments)
}

func TestParseListingSkipsHeaderAndRowsWithoutLink(t *testing.T) {
	html := `
	<div class="su-table su-table-alternate"><table><tbody>
		<tr><td>Meeting</td><td>Date</td><td>Time</td><td>Location</td></tr>
		<tr><td><a href="/events/a/#top">A</a></td><td>01/10/2024</td><td>6:00 PM</td><td>Virtual</td></tr>
		<tr><td>No link yet</td><td>01/24/2024</td><td>6:00 PM</td><td>2 Cedar St</td></tr>
		<tr><td><a href="https://other.example.org/b">B</a></td><td>02/07/2024</td><td>6:00 PM</td><td>Barringer<br>90 Parker St</td></tr>
		<tr><td><a href="  ">C</a></td><td>02/21/2024</td><td>6:00 PM</td><td>Virtual</td></tr>
	</tbody></table></div>`

	doc, err := dom.ParseString(html)
	require.NoError(t, err)

	listing, err := NewListingParser(nil).ParseListing(doc, listingURL)
	require.NoError(t, err)

	assert.Equal(t, 4, listing.Rows)
	require.Len(t, listing.Requests, 2)
	assert.Equal(t, "https://www.nps.k12.nj.us/events/a/", listing.Requests[0].URL)
	assert.Equal(t, "https://other.example.org/b", listing.Requests[1].URL)
	assert.Equal(t, 2, listing.Requests[1].Row)
	assert.Equal(t, []string{"Barringer", "90 Parker St"}, listing.Requests[1].LocationFragments)

	require.Len(t, listing.Skipped, 2)
	assert.Equal(t, 1, listing.Skipped[0].Row)
	assert.True(t, errors.Is(listing.Skipped[0], ErrMissingDetailLink))
	assert.Equal(t, 3, listing.Skipped[1].Row)
}

func TestParseListingNRows(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		html := `<div class="su-table su-table-alternate"><table><tbody><tr><td>Header</td></tr>`
		for i := 0; i < n; i++ {
			html += `<tr><td><a href="/events/x/">x</a></td><td></td><td></td><td>Virtual</td></tr>`
		}
		html += `</tbody></table></div>`

		doc, err := dom.ParseString(html)
		require.NoError(t, err)

		listing, err := NewListingParser(nil).ParseListing(doc, listingURL)
		require.NoError(t, err)
		assert.Len(t, listing.Requests, n)
	}
}

func TestParseListingInvalidBaseURL(t *testing.T) {
	doc, err := dom.ParseString("<html></html>")
	require.NoError(t, err)

	_, err = NewListingParser(nil).ParseListing(doc, "://bad")
	assert.Error(t, err)
}

func TestSelectorsWithDefaults(t *testing.T) {
	custom := &Selectors{Title: "h1.tribe-events-single-event-title"}
	merged := custom.WithDefaults()

	assert.Equal(t, "h1.tribe-events-single-event-title", merged.Title)
	assert.Equal(t, DefaultSelectors().DateCell, merged.DateCell)
	assert.Equal(t, "", custom.DateCell, "original must not be modified")

	var nilSelectors *Selectors
	assert.Equal(t, DefaultSelectors(), nilSelectors.WithDefaults())
}
