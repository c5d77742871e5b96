// Package fileinfo inspects a single path for the get_file_info tool.
package fileinfo

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// HashLimit is the largest file that gets an MD5 digest.
const HashLimit = 10 * 1024 * 1024

// Info is what get_file_info reports about a path.
type Info struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	Modified  time.Time `json:"modified"`
	Mode      string    `json:"mode"`

	IsFile     bool `json:"is_file"`
	IsDir      bool `json:"is_directory"`
	IsSymlink  bool `json:"is_symlink"`
	Executable bool `json:"executable"`

	Extension string `json:"extension,omitempty"`
	MIMEType  string `json:"mime_type,omitempty"`
	Binary    bool   `json:"binary,omitempty"`
	MD5       string `json:"md5_hash,omitempty"`

	// Supported reports a catalogued text format; Ignored a match against
	// the ignore patterns.
	Supported bool `json:"supported"`
	Ignored   bool `json:"ignored"`
}

// Inspect stats path and, for regular files, sniffs its content type and
// hashes it when it is under HashLimit. A missing path is a path_not_found
// failure.
func Inspect(path string, cat config.Catalog) (Info, error) {
	if strings.TrimSpace(path) == "" {
		return Info{}, domain.InvalidOption("file path is required")
	}
	lfi, err := os.Lstat(path)
	if err != nil {
		return Info{}, domain.PathNotFound("file", path).WithCause(err)
	}
	fi := lfi
	if lfi.Mode()&os.ModeSymlink != 0 {
		if fi, err = os.Stat(path); err != nil {
			return Info{}, (&domain.Failure{
				Kind:    domain.ErrKindPathNotFound,
				Message: "symlink target does not exist",
				Path:    path,
			}).WithCause(err)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	info := Info{
		Path:       abs,
		Name:       filepath.Base(abs),
		Size:       fi.Size(),
		SizeHuman:  humanize.IBytes(uint64(fi.Size())),
		Modified:   fi.ModTime().UTC(),
		Mode:       fmt.Sprintf("%04o", fi.Mode().Perm()),
		IsFile:     fi.Mode().IsRegular(),
		IsDir:      fi.IsDir(),
		IsSymlink:  lfi.Mode()&os.ModeSymlink != 0,
		Executable: fi.Mode().IsRegular() && fi.Mode().Perm()&0o111 != 0,
		Ignored:    cat.ShouldIgnore(abs),
	}
	if !info.IsFile {
		return info, nil
	}

	info.Extension = strings.ToLower(filepath.Ext(abs))
	info.Supported = cat.IsSupported(abs)

	mt, err := mimetype.DetectFile(abs)
	if err != nil {
		return Info{}, (&domain.Failure{Kind: domain.ErrKindPathNotFound, Message: "file is not readable", Path: path}).WithCause(err)
	}
	info.MIMEType = mt.String()
	info.Binary = !isText(mt)

	if fi.Size() < HashLimit {
		sum, err := md5File(abs)
		if err != nil {
			return Info{}, (&domain.Failure{Kind: domain.ErrKindPathNotFound, Message: "file is not readable", Path: path}).WithCause(err)
		}
		info.MD5 = sum
	}
	return info, nil
}

// isText walks the detected type's ancestry; every textual type descends
// from text/plain.
func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func md5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
