package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

func tarWithFiles(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, content := range files {
		gt.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, tw.Close())
	return &buf
}

func TestExtractSingleFile(t *testing.T) {
	t.Run("extracts the named file", func(t *testing.T) {
		buf := tarWithFiles(t, map[string]string{
			"test-report.xml": `<testsuite tests="3"/>`,
		})

		data, err := extractSingleFile(buf, "test-report.xml")
		gt.NoError(t, err)
		gt.Equal(t, string(data), `<testsuite tests="3"/>`)
	})

	t.Run("matches on base name regardless of directory prefix", func(t *testing.T) {
		buf := tarWithFiles(t, map[string]string{
			"app/test-report.xml": "report body",
		})

		data, err := extractSingleFile(buf, "test-report.xml")
		gt.NoError(t, err)
		gt.Equal(t, string(data), "report body")
	})

	t.Run("missing file yields an error", func(t *testing.T) {
		buf := tarWithFiles(t, map[string]string{"other.txt": "x"})

		_, err := extractSingleFile(buf, "test-report.xml")
		gt.Error(t, err)
	})

	t.Run("broken stream yields an error", func(t *testing.T) {
		_, err := extractSingleFile(strings.NewReader("not a tar"), "test-report.xml")
		gt.Error(t, err)
	})
}

func TestLogWriter(t *testing.T) {
	// The writer must always report full consumption, or the daemon stream
	// copy would abort mid-build.
	w := newLogWriter(context.Background(), "docker build", "ghcr.io/cytomine/pims:test")
	n, err := w.Write([]byte("Step 1/9 : FROM python:3.10\n ---> abc\npartial"))
	gt.NoError(t, err)
	gt.Equal(t, n, len("Step 1/9 : FROM python:3.10\n ---> abc\npartial"))

	n, err = w.Write([]byte(" line\n"))
	gt.NoError(t, err)
	gt.Equal(t, n, len(" line\n"))
}
