package deviceflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// jsonTransport sends form bodies produced by oauth2 as JSON objects, which
// is the only encoding the IaSQL authorization server accepts. Any other
// request is forwarded as is.
type jsonTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*jsonTransport)(nil)

func (t *jsonTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body == nil || !isForm(req.Header.Get("Content-Type")) {
		return t.base.RoundTrip(req)
	}

	payload, err := formToJSON(req.Body)
	if err != nil {
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(payload))
	out.ContentLength = int64(len(payload))
	out.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(out)
}

// formToJSON drains and closes body, returning its fields as a flat JSON
// object. Only the first value of a repeated field is kept.
func formToJSON(body io.ReadCloser) ([]byte, error) {
	defer func() { _ = body.Close() }()
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing form data: %w", err)
	}

	fields := make(map[string]string, len(form))
	for key := range form {
		fields[key] = form.Get(key)
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding request as JSON: %w", err)
	}
	return payload, nil
}

func isForm(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}
