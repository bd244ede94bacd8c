// Package netx holds small HTTP helpers shared by the client transport.
package netx

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormField is a plain form value sent ahead of the file part.
type FormField struct {
	Name  string
	Value string
}

// FilePart is the single file of a multipart upload.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Body        io.Reader
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// MultipartBody streams fields and file as multipart/form-data through a
// pipe, so the file is never held in memory. It returns the body and its
// Content-Type. The body must be consumed or closed; closing it stops the
// writer.
func MultipartBody(fields []FormField, file FilePart) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()

	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, file))
	}()

	return pr, contentType
}

func writeMultipart(mw *multipart.Writer, fields []FormField, file FilePart) error {
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	return mw.Close()
}
