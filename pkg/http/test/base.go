package lhttptest

import (
	"net/http"
	"net/textproto"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func MethodGenerator() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete})
}

func UrlGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`http://[a-z]+[a-z0-9-]*(:[0-9]{2,4})?(/[a-z0-9-]+)*/?`)
}

func CodeGenerator() *rapid.Generator[int] {
	return rapid.IntRange(200, 599)
}

func HeadersGenerator() *rapid.Generator[http.Header] {
	return rapid.Map(
		rapid.MapOf(
			rapid.Map(rapid.StringMatching(`[A-Za-z][A-Za-z0-9]{0,15}`), textproto.CanonicalMIMEHeaderKey),
			rapid.SliceOfN(rapid.StringMatching(`[ -~]{0,20}`), 1, 3),
		),
		func(v map[string][]string) http.Header { return v })
}

// CheckHeaders asserts every header of ref appears in other with the same values.
func CheckHeaders(t assert.TestingT, ref, other http.Header) {
	for k, vals := range ref {
		assert.ElementsMatchf(t, vals, other.Values(k), "values don't match for key %s", k)
	}
}
