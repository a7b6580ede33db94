package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"admin-console-go/internal/constants"

	"github.com/google/uuid"
)

// RawBody is sent verbatim with a JSON content type.
type RawBody []byte

// RequestDescriptor is a fully-formed outbound request. It is not modified
// after it has been handed to a Transport.
type RequestDescriptor struct {
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	// Form is the source of Body for multipart calls, kept for logging.
	Form      *FormData
	RequestID string
}

// FormData is a multipart payload. Parts are buffered so the request can be
// replayed after a token refresh.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct{ name, value string }

type formFile struct {
	field, filename, contentType string
	content                      []byte
}

func NewFormData() *FormData { return &FormData{} }

// Add appends a plain text field.
func (f *FormData) Add(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part. An empty contentType defaults to
// application/octet-stream.
func (f *FormData) AddFile(field, filename, contentType string, content []byte) *FormData {
	f.files = append(f.files, formFile{field: field, filename: filename, contentType: contentType, content: content})
	return f
}

// Encode renders the multipart body and its boundary content type.
func (f *FormData) Encode() (string, []byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return "", nil, err
		}
	}
	for _, file := range f.files {
		ct := file.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.field, file.filename))
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return "", nil, err
		}
		if _, err := part.Write(file.content); err != nil {
			return "", nil, err
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

// Builder turns a logical call into a RequestDescriptor.
type Builder struct {
	baseURL string
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build resolves the URL, encodes the body, computes default headers, merges
// the caller's headers over them and attaches token when the call requires
// auth. The only failure is a body that cannot be encoded.
func (b *Builder) Build(endpoint string, o *callOptions, token string) (*RequestDescriptor, error) {
	if o == nil {
		o = newCallOptions(nil)
	}
	desc := &RequestDescriptor{
		Method: strings.ToUpper(o.method),
		URL:    b.resolve(endpoint, o),
		Header: http.Header{},
	}

	var formType string
	switch body := o.body.(type) {
	case nil:
	case *FormData:
		ct, encoded, err := body.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		desc.Form = body
		desc.Body = encoded
		formType = ct
	case RawBody:
		desc.Body = append([]byte(nil), body...)
	case json.RawMessage:
		desc.Body = append([]byte(nil), body...)
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		desc.Body = data
	}

	if desc.Form == nil {
		desc.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	desc.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	for k, vs := range o.headers {
		desc.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if formType != "" {
		// the boundary must match the encoded body
		desc.Header.Set(constants.HeaderContentType, formType)
	}
	if o.requiresAuth && token != "" {
		desc.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+token)
	}
	if desc.Header.Get(constants.HeaderRequestID) == "" {
		desc.Header.Set(constants.HeaderRequestID, uuid.NewString())
	}
	desc.RequestID = desc.Header.Get(constants.HeaderRequestID)
	return desc, nil
}

func (b *Builder) resolve(endpoint string, o *callOptions) string {
	target := endpoint
	if !hasScheme(endpoint) {
		target = b.baseURL + endpoint
	}
	if len(o.query) == 0 {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + o.query.Encode()
}

func hasScheme(endpoint string) bool {
	lower := strings.ToLower(endpoint)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
