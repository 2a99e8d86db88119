package catalogreader

import (
	"net/url"
	"os"
	"path/filepath"

	"tonearm/internal/builderr"
	"tonearm/internal/manifest"
)

// readArtistManifestFile parses one artist.eno and applies its fields:
// the generic local/override fields shared with every other manifest
// kind, plus the artist-specific name/alias/aliases/external_page/image
// fields, grounded on original_source/src/manifest/artist.rs. name
// defaults to the containing directory's name when the manifest omits
// it.
func readArtistManifestFile(manifestPath, dirAbs, catalogRoot string, parentOverrides manifest.Overrides, errs *builderr.Accumulator) (name string, aliases []string, externalPage string, image *manifest.DescribedImage, local manifest.LocalOptions, overrides manifest.Overrides) {
	overrides = parentOverrides.Clone()
	local = manifest.NewLocalOptions()

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		errs.AddError(manifestPath, 0, "reading manifest: %s", err)
		name = filepath.Base(dirAbs)
		return
	}
	doc, err := manifest.Parse(string(data))
	if err != nil {
		errs.AddError(manifestPath, 0, "%s", err)
		name = filepath.Base(dirAbs)
		return
	}

	applyFields(doc.Fields, &local, &overrides, func(f manifest.Field) bool {
		switch f.Key {
		case "name":
			name = f.Value
			return true

		case "alias", "aliases":
			if f.Kind == manifest.List {
				aliases = append([]string(nil), f.Items...)
			} else {
				aliases = []string{f.Value}
			}
			return true

		case "external_page":
			if _, err := url.ParseRequestURI(f.Value); err != nil {
				errs.AddError(manifestPath, f.Line, "'external_page' is not a valid URL: %q", f.Value)
			} else {
				externalPage = f.Value
			}
			return true

		case "image":
			relPath := f.Value
			description := ""
			if f.Kind == manifest.Attributed {
				relPath = firstAttr(f.Attrs, "file")
				description = firstAttr(f.Attrs, "description")
			}
			if relPath == "" {
				errs.AddError(manifestPath, f.Line, "'image' requires a file")
				return true
			}
			absImagePath := filepath.Join(dirAbs, relPath)
			if _, err := os.Stat(absImagePath); err != nil {
				errs.AddError(manifestPath, f.Line, "image file %q does not exist", relPath)
				return true
			}
			relToRoot, err := filepath.Rel(catalogRoot, absImagePath)
			if err != nil {
				relToRoot = absImagePath
			}
			image = &manifest.DescribedImage{RelPath: relToRoot, Description: description}
			return true

		default:
			return false
		}
	}, manifestPath, errs)

	if name == "" {
		name = filepath.Base(dirAbs)
	}
	return
}

func firstAttr(attrs map[string][]string, key string) string {
	values := attrs[key]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
