// Package transcode renders a source audio file into one of the download/
// streaming AudioFormat variants, tag-mapped per a tagmap.Mapping, and
// wires the result into the build cache so repeat builds never re-encode
// unchanged inputs. Grounded on original_source/src/ffmpeg.rs (the exact
// ffmpeg flag choices per source/target format family and tag action) and
// transcodes.rs (the cache-or-invoke flow); actual audio encoding is an
// external collaborator (spec §1 Non-goals: "audio codec implementations"),
// so Transcoder is the seam and the default implementation shells out to
// the system ffmpeg binary the same way the original does.
package transcode

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"tonearm/internal/audioformat"
	"tonearm/internal/cache"
	"tonearm/internal/tagmap"
)

// Binary is the ffmpeg executable name, platform-adjusted like the
// original's FFMPEG_BINARY constant.
var Binary = func() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}()

// Request describes one transcode invocation.
type Request struct {
	InputPath    string
	OutputPath   string
	CoverPath    string // only read when Mapping.Image calls for an embedded write
	SourceFamily audioformat.Family
	TargetFormat audioformat.Format
	Mapping      tagmap.Mapping
}

// Transcoder renders one Request, producing OutputPath on success.
type Transcoder interface {
	Transcode(req Request) error
}

// execTranscoder shells out to ffmpeg, mirroring the original's argument
// construction almost line for line.
type execTranscoder struct{}

// NewExecTranscoder returns the default Transcoder, which invokes the
// system ffmpeg binary.
func NewExecTranscoder() Transcoder { return execTranscoder{} }

func (execTranscoder) Transcode(req Request) error {
	args := BuildArgs(req)
	cmd := exec.Command(Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("the ffmpeg child process returned an error exit code.\n\nstderr: %s\n\nstdout: %s", stderr.String(), stdout.String())
		}
		return fmt.Errorf("the ffmpeg child process could not be executed: %w", err)
	}
	return nil
}

// BuildArgs constructs the ffmpeg command-line arguments for req, applying
// the same tag-copy/tag-write flag rules and per-format codec options as
// the original's apply_tag_copy_flags/apply_tag_write_flags/transcode.
func BuildArgs(req Request) []string {
	args := []string{"-y", "-i", req.InputPath}

	switch {
	case req.Mapping.CopyAll:
		targetFamily := req.TargetFormat.Family()
		args = append(args, applyTagCopyFlags(req.SourceFamily, targetFamily)...)
		args = append(args, applyTagWriteFlags(targetFamily)...)

	case req.Mapping.RemoveAll:
		args = append(args, "-map_metadata", "-1", "-vn")

	default:
		if req.Mapping.Image != nil && req.Mapping.Image.Write() {
			args = append(args, "-i", req.CoverPath)
		}

		args = append(args, "-map_metadata", "-1")

		if req.Mapping.Album != nil {
			args = append(args, "-metadata", "album="+*req.Mapping.Album)
		}
		if req.Mapping.AlbumArtist != nil {
			args = append(args, "-metadata", "album_artist="+*req.Mapping.AlbumArtist)
		}
		if req.Mapping.Artist != nil {
			args = append(args, "-metadata", "artist="+*req.Mapping.Artist)
		}

		args = append(args, imageEmbedArgs(req.Mapping.Image, req.TargetFormat.Family())...)

		if req.Mapping.Title != nil {
			args = append(args, "-metadata", "title="+*req.Mapping.Title)
		}
		if req.Mapping.Track != nil {
			args = append(args, "-metadata", fmt.Sprintf("track=%d", *req.Mapping.Track))
		}

		args = append(args, applyTagWriteFlags(req.TargetFormat.Family())...)
	}

	args = append(args, codecArgs(req.TargetFormat)...)
	args = append(args, req.OutputPath)

	return args
}

// applyTagCopyFlags mirrors the original's explicit-metadata-mapping
// workaround needed when copying tags from Ogg Vorbis or Opus sources into
// a target format whose muxer doesn't pick up stream metadata by default.
func applyTagCopyFlags(sourceFamily, targetFamily audioformat.Family) []string {
	if sourceFamily != audioformat.FamilyOggVorbis && sourceFamily != audioformat.FamilyOpus {
		return nil
	}
	switch targetFamily {
	case audioformat.FamilyOggVorbis, audioformat.FamilyOpus:
		return nil
	default:
		return []string{"-map_metadata", "0:s:a:0"}
	}
}

// applyTagWriteFlags enables tag writing for muxers that don't by default.
func applyTagWriteFlags(targetFamily audioformat.Family) []string {
	switch targetFamily {
	case audioformat.FamilyAac, audioformat.FamilyAiff:
		return []string{"-write_id3v2", "1"}
	default:
		return nil
	}
}

// imageEmbedArgs applies the per-family cover-embedding flags; most
// formats simply can't carry embedded art via ffmpeg ("-vn" drops video).
func imageEmbedArgs(embed *tagmap.ImageEmbed, targetFamily audioformat.Family) []string {
	if embed == nil {
		return []string{"-vn"}
	}
	if embed.None {
		return []string{"-vn"}
	}
	if embed.Copy {
		return []string{"-c:v", "copy", "-disposition:v:0", "attached_pic"}
	}

	// Write: embed from CoverPath, added as ffmpeg's second input above.
	switch targetFamily {
	case audioformat.FamilyFlac:
		return []string{
			"-map", "0:a", "-map", "1",
			"-metadata:s:v", `title="Album cover"`,
			"-metadata:s:v", `comment="Cover (Front)"`,
			"-disposition:v", "attached_pic",
		}
	case audioformat.FamilyMp3:
		return []string{
			"-map", "0:a", "-map", "1",
			"-metadata:s:v", `title="Album cover"`,
			"-metadata:s:v", `comment="Cover (Front)"`,
			"-id3v2_version", "3",
		}
	default:
		// AAC, AIFF, ALAC, Ogg Vorbis, Opus, WAV: no working ffmpeg
		// embedding path found by the original implementation either.
		return []string{"-vn"}
	}
}

// codecArgs applies the per-target-format codec/quality options.
func codecArgs(format audioformat.Format) []string {
	switch format {
	case audioformat.Alac:
		return []string{"-vn", "-codec:a", "alac"}
	case audioformat.Mp3VbrV0:
		return []string{"-codec:a", "libmp3lame", "-qscale:a", "0"}
	case audioformat.Mp3VbrV5:
		return []string{"-codec:a", "libmp3lame", "-qscale:a", "5"}
	case audioformat.Mp3VbrV7:
		return []string{"-codec:a", "libmp3lame", "-qscale:a", "7"}
	case audioformat.Opus48Kbps:
		return []string{"-codec:a", "libopus", "-b:a", "48k"}
	case audioformat.Opus96Kbps:
		return []string{"-codec:a", "libopus", "-b:a", "96k"}
	case audioformat.Opus128Kbps:
		return []string{"-codec:a", "libopus", "-b:a", "128k"}
	default:
		return nil
	}
}

// Render resolves req against the cache before invoking transcoder: if an
// equivalent (format, tag signature) rendering already exists it is
// reused untouched; otherwise transcoder runs, the result is stored
// content-addressed and recorded against transcodes (spec §4.2, §4.5).
func Render(
	transcoder Transcoder,
	store *cache.Store,
	transcodes *cache.Transcodes,
	sourcePath string,
	format audioformat.Format,
	mapping tagmap.Mapping,
	coverPath string,
) (cache.Asset, error) {
	tagSignature := mapping.Signature()

	if existing, ok := transcodes.FindFormat(format, tagSignature); ok {
		existing.Asset.UnmarkStale()
		return existing.Asset, nil
	}

	tmp, err := os.CreateTemp("", "tonearm-transcode-*"+format.Extension())
	if err != nil {
		return cache.Asset{}, err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	req := Request{
		InputPath:    sourcePath,
		OutputPath:   tmpPath,
		CoverPath:    coverPath,
		SourceFamily: transcodes.SourceMeta.FormatFamily,
		TargetFormat: format,
		Mapping:      mapping,
	}
	if err := transcoder.Transcode(req); err != nil {
		return cache.Asset{}, err
	}

	asset, err := store.PutFile(tmpPath, format.Extension())
	if err != nil {
		return cache.Asset{}, err
	}

	transcodes.Formats = append(transcodes.Formats, cache.TranscodeFormat{
		Format:       format,
		TagSignature: tagSignature,
		Asset:        asset,
	})

	return asset, nil
}
