package policy

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nodebooks/kernel/internal/kernelerr"
)

// FsPathArgIndices documents, for each Sandboxed Filesystem Facade
// method, which positional arguments (0-indexed, receiver excluded)
// are path-like and therefore subject to containment checks (spec.md
// §4.4). Methods not listed pass every argument through unchanged.
var FsPathArgIndices = map[string][]int{
	"readFile": {0}, "readFileSync": {0},
	"writeFile": {0}, "writeFileSync": {0},
	"appendFile": {0}, "appendFileSync": {0},
	"unlink": {0}, "unlinkSync": {0},
	"mkdir": {0}, "mkdirSync": {0},
	"rmdir": {0}, "rmdirSync": {0},
	"rm": {0}, "rmSync": {0},
	"readdir": {0}, "readdirSync": {0},
	"stat": {0}, "statSync": {0},
	"lstat": {0}, "lstatSync": {0},
	"rename": {0, 1}, "renameSync": {0, 1},
	"copyFile": {0, 1}, "copyFileSync": {0, 1},
	"createReadStream": {0}, "createWriteStream": {0},
	"open": {0}, "openSync": {0},
	"access": {0}, "accessSync": {0},
	"exists": {0}, "existsSync": {0},
	"realpath": {0}, "realpathSync": {0},
	"chmod": {0}, "chmodSync": {0},
	"symlink": {0, 1}, "symlinkSync": {0, 1},
	"readlink": {0}, "readlinkSync": {0},
	"watch": {0},
}

// NormalizePathArg converts a fs path argument already exported from
// its JS value (string, []byte for a Buffer, or a file:// URL string)
// into a plain Go string, per spec.md §4.4's "string as-is; URL via
// file-URL rules; byte buffer decoded as UTF-8".
func NormalizePathArg(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return decodeFileURL(t), true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

func decodeFileURL(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	return u.Path
}

// ResolvePath canonicalizes raw against root and confirms containment
// (spec.md §4.4): "If the resolved absolute path is not equal to the
// root and does not have the root followed by a path separator as a
// prefix, the operation fails with PolicyError... even before any I/O
// occurs."
func ResolvePath(root, raw string) (string, error) {
	abs := raw
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)
	cleanRoot := filepath.Clean(root)

	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", kernelerr.NewPolicyErrorf("access to path %s is not allowed", raw)
	}
	return abs, nil
}
