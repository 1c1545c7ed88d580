package invoke

import (
	"bufio"
	"fmt"
	"net/http"
)

// response writes a handler's output in the CGI response format:
// header fields, a blank line, then the body.
type response struct {
	header      http.Header
	bufw        *bufio.Writer
	code        int
	wroteHeader bool
	err         error
}

var _ http.Flusher = (*response)(nil)

func newResponse(bufw *bufio.Writer) *response {
	return &response{
		header: make(http.Header),
		bufw:   bufw,
	}
}

func (r *response) Header() http.Header {
	return r.header
}

func (r *response) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		if r.header.Get("Content-Type") == "" {
			r.header.Set("Content-Type", http.DetectContentType(p))
		}
		r.WriteHeader(http.StatusOK)
	}

	if r.err != nil {
		return 0, r.err
	}

	n, err := r.bufw.Write(p)
	if err != nil {
		r.err = err
	}

	return n, err
}

func (r *response) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}

	r.wroteHeader = true
	r.code = code

	if code != http.StatusOK {
		if _, err := fmt.Fprintf(r.bufw, "Status: %d %s\r\n", code, http.StatusText(code)); err != nil {
			r.err = err
			return
		}
	}

	if r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	if err := r.header.Write(r.bufw); err != nil {
		r.err = err
		return
	}

	if _, err := r.bufw.WriteString("\r\n"); err != nil {
		r.err = err
	}
}

// Flush pushes buffered output to the client, writing the
// header block first if nothing was written yet.
func (r *response) Flush() {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}

	if r.err != nil {
		return
	}

	if err := r.bufw.Flush(); err != nil {
		r.err = err
	}
}

// finish makes sure the header block is out and flushes.
func (r *response) finish() error {
	r.Flush()
	return r.err
}
