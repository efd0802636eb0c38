package placetopay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrub(t *testing.T) {
	transcript := `{"auth":{"login":"abc","tranKey":"c2VjcmV0","nonce":"bm9uY2U=","seed":"2026-10-16T10:00:00Z"},` +
		`"instrument":{"card":{"number":"4110760000000081","expiration":"12/30","cvv":"123","installments":1}}}`

	scrubbed := Scrub(transcript)

	assert.NotContains(t, scrubbed, "4110760000000081")
	assert.Contains(t, scrubbed, `"number":"411076******0081"`)
	assert.Contains(t, scrubbed, `"cvv":"[FILTERED]"`)
	assert.Contains(t, scrubbed, `"tranKey":"[FILTERED]"`)
	assert.Contains(t, scrubbed, `"nonce":"[FILTERED]"`)
	assert.Contains(t, scrubbed, `"login":"abc"`)
}

func TestScrub_LeavesOtherNumbersAlone(t *testing.T) {
	transcript := `{"internalReference":1234567,"reference":"TEST_20261016_150405123"}`

	assert.Equal(t, transcript, Scrub(transcript))
}
