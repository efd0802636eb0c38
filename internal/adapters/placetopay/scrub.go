package placetopay

import "regexp"

var (
	cardNumberPattern = regexp.MustCompile(`("number"\s*:\s*")(\d{6})\d+(\d{4})"`)
	cvvPattern        = regexp.MustCompile(`("cvv"\s*:\s*")[^"]*"`)
	tranKeyPattern    = regexp.MustCompile(`("tranKey"\s*:\s*")[^"]*"`)
	noncePattern      = regexp.MustCompile(`("nonce"\s*:\s*")[^"]*"`)
)

const filtered = "[FILTERED]"

// Scrub masks card numbers, verification values and credentials in a request
// or response transcript.
func Scrub(transcript string) string {
	out := cardNumberPattern.ReplaceAllString(transcript, `${1}${2}******${3}"`)
	out = cvvPattern.ReplaceAllString(out, `${1}`+filtered+`"`)
	out = tranKeyPattern.ReplaceAllString(out, `${1}`+filtered+`"`)
	out = noncePattern.ReplaceAllString(out, `${1}`+filtered+`"`)
	return out
}
