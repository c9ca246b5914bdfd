package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

const defaultMimeType = "application/octet-stream"

// staticFiles serves files under root. Paths that resolve outside root are
// refused.
type staticFiles struct {
	root  string
	index string
}

func newStaticFiles(dir, index string) (*staticFiles, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if index == "" {
		index = "tngrm.html"
	}
	return &staticFiles{root: root, index: index}, nil
}

func contentType(name string) string {
	if t, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	return defaultMimeType
}

// resolve maps a URL path to a file under root.
func (f *staticFiles) resolve(urlPath string) (string, bool) {
	if urlPath == "" || urlPath == "/" {
		urlPath = "/" + f.index
	}
	name := filepath.Join(f.root, filepath.FromSlash(urlPath))
	if name != f.root && !strings.HasPrefix(name, f.root+string(filepath.Separator)) {
		return "", false
	}
	return name, true
}

func (f *staticFiles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, ok := f.resolve(r.URL.Path)
	if !ok {
		plain(w, http.StatusForbidden, "403 Forbidden: Access denied")
		return
	}

	content, err := readFile(name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		plain(w, http.StatusNotFound, "404 Not Found")
		return
	case err != nil:
		plain(w, http.StatusInternalServerError, "500 Internal Server Error: "+errorCode(err))
		return
	}

	w.Header().Set("Content-Type", contentType(name))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(content)
	}
}

var errIsDir = errors.New("EISDIR")

// errorCode names a read failure without the file path.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errIsDir):
		return "EISDIR"
	case errors.Is(err, fs.ErrPermission):
		return "EACCES"
	default:
		return "EIO"
	}
}

func readFile(name string) ([]byte, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errIsDir
	}
	return os.ReadFile(name)
}

func plain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
