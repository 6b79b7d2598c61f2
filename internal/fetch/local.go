package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Local reads files from disk. With a root, locators resolve inside it
// and cannot escape; without one, paths are used as given.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Open(_ context.Context, u *url.URL) (io.ReadCloser, error) {
	name := u.Path
	if u.Host != "" {
		name = u.Host + "/" + strings.TrimPrefix(name, "/")
	}

	var (
		f   *os.File
		err error
	)
	if l.root == "" {
		f, err = os.Open(filepath.FromSlash(name))
	} else {
		f, err = l.openInRoot(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return f, nil
}

func (l *Local) openInRoot(name string) (*os.File, error) {
	root, err := os.OpenRoot(l.root)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	return root.Open(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+name)), "/"))
}
