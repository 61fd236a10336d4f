package mizuchi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mizuchi-rpc/sdk-go/payload/ns"
)

// A File is a file parameter of a service action. A file holds metadata and
// a location, not the contents: local files point to a filesystem path and
// remote files to an HTTP address served by a framework file server.
type File struct {
	name     string
	path     string
	mime     string
	filename string
	size     int64
	token    string
}

// NewFile creates a file parameter for a local filesystem path. The size and
// filename are resolved from the path when it exists. An empty mime defaults
// to a generic binary type.
func NewFile(name, path, mime string) File {
	if mime == "" {
		mime = "application/octet-stream"
	}
	f := File{name: name, path: path, mime: mime, filename: filepath.Base(path)}
	if info, err := os.Stat(strings.TrimPrefix(path, "file://")); err == nil {
		f.size = info.Size()
	}
	return f
}

// newFileFromPayload creates a file from its payload record.
func newFileFromPayload(data map[string]any) File {
	var f File
	f.name, _ = data[ns.Name].(string)
	f.path, _ = data[ns.Path].(string)
	f.mime, _ = data[ns.Mime].(string)
	f.filename, _ = data[ns.Filename].(string)
	f.token, _ = data[ns.Token].(string)
	if size, ok := data[ns.Size].(int64); ok {
		f.size = size
	}
	return f
}

// Name returns the file parameter name.
func (f File) Name() string { return f.name }

// Path returns the file location.
func (f File) Path() string { return f.path }

// Mime returns the file mime type.
func (f File) Mime() string { return f.mime }

// Filename returns the file name, without directories.
func (f File) Filename() string { return f.filename }

// Size returns the file size in bytes.
func (f File) Size() int64 { return f.size }

// Token returns the file server access token, which is empty for local
// files.
func (f File) Token() string { return f.token }

// Exists reports whether the file parameter carries a location.
func (f File) Exists() bool { return f.path != "" }

// IsLocal reports whether the file is on the local filesystem, as opposed to
// a framework file server.
func (f File) IsLocal() bool {
	return f.path != "" && !strings.HasPrefix(f.path, "http://") && !strings.HasPrefix(f.path, "https://")
}

// Read returns the file contents. Local files are read from the filesystem;
// remote files are fetched from the file server using the access token.
func (f File) Read() ([]byte, error) {
	if f.IsLocal() {
		return os.ReadFile(strings.TrimPrefix(f.path, "file://"))
	}

	req, err := http.NewRequest(http.MethodGet, f.path, nil)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", f.name, err)
	}
	req.Header.Set("X-Token", f.token)
	rsp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", f.name, err)
	}
	defer rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read file %q: unexpected status %q", f.name, rsp.Status)
	}
	return io.ReadAll(rsp.Body)
}

// WithName returns a copy of the file with another parameter name.
func (f File) WithName(name string) File {
	f.name = name
	return f
}

// WithMime returns a copy of the file with another mime type.
func (f File) WithMime(mime string) File {
	f.mime = mime
	return f
}

// data returns the payload record for the file.
func (f File) data() map[string]any {
	return map[string]any{
		ns.Name:     f.name,
		ns.Path:     f.path,
		ns.Mime:     f.mime,
		ns.Filename: f.filename,
		ns.Size:     f.size,
		ns.Token:    f.token,
	}
}

// filesData returns the payload records for a file list.
func filesData(files []File) []any {
	if len(files) == 0 {
		return nil
	}
	data := make([]any, len(files))
	for i, f := range files {
		data[i] = f.data()
	}
	return data
}
