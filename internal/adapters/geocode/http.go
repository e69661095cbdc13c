package geocode

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// checkStatus converts non-2xx responses into a typed error, draining and
// closing the body so the connection can be reused.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return &httpStatusError{
		Code: resp.StatusCode,
		Body: strings.TrimSpace(string(b)),
	}
}

// normalize ensures consistent provider queries by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
