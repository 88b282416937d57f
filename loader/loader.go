package loader

import (
	"io"
	"net/url"
)

// Loader is an interface used by the engines to load script source or
// binaries.
type Loader interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// ReadSource drains a loader's reader and closes it.
func ReadSource(l Loader) ([]byte, error) {
	reader, err := l.GetReader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
