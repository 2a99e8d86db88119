package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"tonearm/internal/constants"
)

// manifestFilename builds the on-disk filename for one manifest entry:
// <id>.<schemaKey>.<ManifestExt>, matching the original's
// <base64-signature>.<schema-key>.bincode naming (process_manifests), id
// order and dot separators, substituting msgpack for bincode per
// DESIGN.md's codec choice.
func manifestFilename(schemaKey, id string) string {
	return fmt.Sprintf("%s.%s.%s", id, schemaKey, constants.ManifestExt)
}

// isManifestFilename reports whether name carries the manifest extension
// (the classification register_files uses to split manifests from asset
// files during a directory scan).
func isManifestFilename(name string) bool {
	return strings.HasSuffix(name, "."+constants.ManifestExt)
}

// schemaKeyOf extracts the schema key segment of a manifest filename, or
// ("", false) if name doesn't match the "<id>.<key>.<ext>" shape.
func schemaKeyOf(name string) (string, bool) {
	trimmed := strings.TrimSuffix(name, "."+constants.ManifestExt)
	idx := strings.LastIndex(trimmed, ".")
	if idx < 0 {
		return "", false
	}
	return trimmed[idx+1:], true
}

func writeManifest(dir, filename string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "tmp-manifest-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, filepath.Join(dir, filename))
}

func readManifest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(data, v)
}
