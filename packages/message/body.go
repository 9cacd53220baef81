package message

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// ContentTypeJSON is the content type applied to every prepared body.
const ContentTypeJSON = "application/json"

var formPattern = regexp.MustCompile(`^[^=&]+=[^=&]*(&[^=&]+=[^=&]*)*$`)

// PrepareBody turns the -d value into the request body.
//
// A form string (key=value pairs joined by &) is mechanically
// re-encoded as a JSON object, keys and values taken verbatim with no
// URL-decoding and no quote escaping; that is a best-effort
// convenience, not a codec. Valid JSON text passes through untouched.
// Anything else naming an existing file is replaced by that file's
// contents. All three branches are tagged application/json.
func PrepareBody(data string) ([]byte, string, error) {
	if formPattern.MatchString(data) {
		return encodeForm(data), ContentTypeJSON, nil
	}

	if !gjson.Valid(data) {
		if info, err := os.Stat(data); err == nil && !info.IsDir() {
			content, err := os.ReadFile(data)
			if err != nil {
				return nil, "", fmt.Errorf("read body file %s: %w", data, err)
			}
			return content, ContentTypeJSON, nil
		}
	}

	return []byte(data), ContentTypeJSON, nil
}

func encodeForm(data string) []byte {
	var b strings.Builder
	b.WriteByte('{')
	for i, pair := range strings.Split(data, "&") {
		key, value, _ := strings.Cut(pair, "=")
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`"` + key + `":"` + value + `"`)
	}
	b.WriteByte('}')
	return []byte(b.String())
}
