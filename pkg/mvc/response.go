package mvc

import (
	"fmt"
	"net/http"
	"strings"
)

// Response is the outbound result of one request
type Response interface {
	SetContent(content string)
	AppendContent(content string)
	Content() string

	// SetStatus sets the status code. Without a message the standard
	// description of the code is used.
	SetStatus(code int, message ...string)
	StatusCode() int
	StatusMessage() string
	// Status returns code and message, e.g. "404 Not Found"
	Status() string

	SetHeader(name, value string)
	Header(name string) string
	Headers() http.Header
}

// WebResponse is the Response used for web requests
type WebResponse struct {
	content       strings.Builder
	statusCode    int
	statusMessage string
	headers       http.Header
}

// NewResponse creates a "200 OK" response with no content
func NewResponse() *WebResponse {
	return &WebResponse{
		statusCode:    http.StatusOK,
		statusMessage: http.StatusText(http.StatusOK),
		headers:       make(http.Header),
	}
}

func (r *WebResponse) SetContent(content string) {
	r.content.Reset()
	r.content.WriteString(content)
}

func (r *WebResponse) AppendContent(content string) {
	r.content.WriteString(content)
}

func (r *WebResponse) Content() string {
	return r.content.String()
}

func (r *WebResponse) SetStatus(code int, message ...string) {
	r.statusCode = code
	if len(message) > 0 && message[0] != "" {
		r.statusMessage = message[0]
		return
	}
	r.statusMessage = StatusText(code)
}

func (r *WebResponse) StatusCode() int {
	return r.statusCode
}

func (r *WebResponse) StatusMessage() string {
	return r.statusMessage
}

func (r *WebResponse) Status() string {
	return fmt.Sprintf("%d %s", r.statusCode, r.statusMessage)
}

func (r *WebResponse) SetHeader(name, value string) {
	r.headers.Set(name, value)
}

func (r *WebResponse) Header(name string) string {
	return r.headers.Get(name)
}

func (r *WebResponse) Headers() http.Header {
	return r.headers
}

// StatusText returns the standard description of an HTTP status code, or
// "Unknown Status" for codes without one.
func StatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown Status"
}
