package banner

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mikequentel/banner/internal/model"
)

// ErrImageNotFound is returned when the banner path does not resolve to a
// readable regular file.
var ErrImageNotFound = errors.New("banner image not found")

// ReadImage loads the whole file at path. The content type is sniffed from
// the bytes for the upload part header only, the remote service decides
// what it accepts.
func ReadImage(path string) (model.Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %s: %w", ErrImageNotFound, path, err)
	}
	if fi.IsDir() {
		return model.Image{}, fmt.Errorf("%w: %s is a directory", ErrImageNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: %s: %w", ErrImageNotFound, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.Image{}, fmt.Errorf("%w: read %s: %w", ErrImageNotFound, path, err)
	}

	return model.Image{
		Path:        path,
		Data:        data,
		ContentType: mimetype.Detect(data).String(),
	}, nil
}
