package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want any
	}{
		{
			name: "object",
			raw:  `{"access_token":"T1","expires_in":3600}`,
			want: map[string]any{"access_token": "T1", "expires_in": float64(3600)},
		},
		{
			name: "nested object",
			raw:  `{"data":{"id":"42","name":"Jo Doe"}}`,
			want: map[string]any{"data": map[string]any{"id": "42", "name": "Jo Doe"}},
		},
		{
			name: "array",
			raw:  `[1,2,3]`,
			want: []any{float64(1), float64(2), float64(3)},
		},
		{
			name: "bare string scalar",
			raw:  `"hello"`,
			want: "hello",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Decode([]byte(tt.raw)))
		})
	}
}

func TestDecodeJSONShortCircuits(t *testing.T) {
	t.Parallel()

	// A body that is simultaneously valid JSON and a plausible query string
	// must be decoded as JSON: the fallback stops at the first success.
	got := Decode([]byte(`{"a=b":"c"}`))
	assert.Equal(t, map[string]any{"a=b": "c"}, got)
}

func TestDecodeJSONNullAndFalseFallThrough(t *testing.T) {
	t.Parallel()

	// JSON null and false are not usable results; the chain continues and,
	// with nothing else matching, degrades to the raw string.
	assert.Equal(t, "null", Decode([]byte("null")))
	assert.Equal(t, "false", Decode([]byte("false")))
}

func TestDecodeXML(t *testing.T) {
	t.Parallel()

	raw := `<user><id>42</id><name>Jo Doe</name></user>`
	want := map[string]any{
		"user": map[string]any{"id": "42", "name": "Jo Doe"},
	}
	assert.Equal(t, want, Decode([]byte(raw)))
}

func TestDecodeXMLStripsNamespacePrefixes(t *testing.T) {
	t.Parallel()

	plain := Decode([]byte(`<user><id>42</id></user>`))
	namespaced := Decode([]byte(`<ns:user><ns:id>42</ns:id></ns:user>`))
	assert.Equal(t, plain, namespaced)
}

func TestDecodeXMLRepeatedElements(t *testing.T) {
	t.Parallel()

	raw := `<feed><entry>a</entry><entry>b</entry></feed>`
	want := map[string]any{
		"feed": map[string]any{"entry": []any{"a", "b"}},
	}
	assert.Equal(t, want, Decode([]byte(raw)))
}

func TestDecodeXMLMalformedYieldsNoResult(t *testing.T) {
	t.Parallel()

	// An unclosed tag is a parse failure, not an empty mapping; with no '='
	// in the body the query-string step gives up too.
	raw := `<user><id>42</user>`
	assert.Equal(t, raw, Decode([]byte(raw)))
}

func TestDecodeQueryString(t *testing.T) {
	t.Parallel()

	got := Decode([]byte("access_token=T1&expires_in=3600&scope=identify%20email"))
	want := map[string]any{
		"access_token": "T1",
		"expires_in":   "3600",
		"scope":        "identify email",
	}
	assert.Equal(t, want, got)
}

func TestDecodeUndecodableReturnsRawString(t *testing.T) {
	t.Parallel()

	raw := "not json <not xml either"
	got := Decode([]byte(raw))
	require.IsType(t, "", got)
	assert.Equal(t, raw, got)
}

func TestBirthday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		year  int
		month int
		day   int
	}{
		{"iso date", "1987-06-05", 1987, 6, 5},
		{"slash date", "1987/06/05", 1987, 6, 5},
		{"us date", "06/05/1987", 1987, 6, 5},
		{"long form", "June 5, 1987", 1987, 6, 5},
		{"month day only", "06-05", 0, 6, 5},
		{"garbage", "born yesterday", 0, 0, 0},
		{"empty", "", 0, 0, 0},
		{"invalid calendar day", "1987-02-31", 0, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			y, m, d := Birthday(tt.in)
			assert.Equal(t, tt.year, y)
			assert.Equal(t, tt.month, m)
			assert.Equal(t, tt.day, d)
		})
	}
}
