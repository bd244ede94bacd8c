package netx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultipartBody_ServerSeesFieldsAndFile(t *testing.T) {
	var (
		gotEntry, gotDuration, gotName, gotCT string
		gotBody                               []byte
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotEntry = r.FormValue("entry_id")
		gotDuration = r.FormValue("duration")

		f, hdr, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		gotName = hdr.Filename
		gotCT = hdr.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	body, ct := MultipartBody(
		[]FormField{{Name: "entry_id", Value: "e-1"}, {Name: "duration", Value: "3.5"}},
		FilePart{Field: "audio", Filename: `my "voice".m4a`, ContentType: "audio/x-m4a", Body: strings.NewReader("RIFF-data")},
	)
	assert.True(t, strings.HasPrefix(ct, "multipart/form-data; boundary="))

	resp, err := http.Post(ts.URL, ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "e-1", gotEntry)
	assert.Equal(t, "3.5", gotDuration)
	assert.Equal(t, `my "voice".m4a`, gotName)
	assert.Equal(t, "audio/x-m4a", gotCT)
	assert.Equal(t, []byte("RIFF-data"), gotBody)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk read failed") }

func TestMultipartBody_ReaderErrorSurfaces(t *testing.T) {
	body, _ := MultipartBody(nil, FilePart{Field: "audio", Filename: "a.mp3", Body: failingReader{}})
	_, err := io.ReadAll(body)
	require.ErrorContains(t, err, "disk read failed")
}

func TestMultipartBody_CloseStopsWriter(t *testing.T) {
	body, _ := MultipartBody(nil, FilePart{Field: "audio", Filename: "a.mp3", Body: strings.NewReader(strings.Repeat("x", 1<<16))})
	require.NoError(t, body.Close())
	_, err := body.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
