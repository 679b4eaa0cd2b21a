package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/schuko"
)

func findFontConfigBinary(conf schuko.Configuration) (string, error) {
	path := conf.GetString("fontconfig")
	if path == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point location of 'fc-list' binary")
		return "", core.Error(core.EMISSING, "fontconfig not configured")
	}
	if !filepath.IsAbs(path) {
		return "", core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", path)
	}
	if fi, err := os.Stat(path); err != nil || (fi.Mode().Perm()&0100) == 0 {
		return "", core.WrapError(err, core.EINVALID,
			"fontconfig configuration points to an invalid binary: %s", path)
	}
	return path, nil
}

// cacheFontConfigList runs fc-list once and stores its output in the user's
// cache directory. If update is false and a cached listing exists, fc-list
// will not be called.
func cacheFontConfigList(conf schuko.Configuration, update bool) (string, error) {
	dir, err := CacheDirPath(conf)
	if err != nil {
		return "", err
	}
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil && !update {
		return fcListFilename, nil // fontlist already exists
	}
	fcpath, err := findFontConfigBinary(conf)
	if err != nil {
		return "", err
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		defer fontlistFile.Close()
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
	}
	if err != nil {
		return "", core.WrapError(err, core.EINVALID,
			"fontconfig output file cannot be created: %s", fcListFilename)
	}
	return fcListFilename, nil
}

// loadFontConfigList reads the (cached) output of fc-list.
func loadFontConfigList(conf schuko.Configuration) ([]font.Descriptor, error) {
	fclist, err := cacheFontConfigList(conf, false)
	if err != nil {
		return nil, err
	}
	fc, err := os.Open(fclist)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID,
			"fontconfig font list cannot be opened: %s", fclist)
	}
	defer fc.Close()
	descs, err := parseFontConfigList(fc)
	if err != nil {
		return descs, core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist)
	}
	tracer().Infof("loaded fontconfig list with %d fonts", len(descs))
	return descs, nil
}

// parseFontConfigList parses lines of fc-list's default output format:
//
//	/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf: DejaVu Sans,DejaVu Sans Bold:style=Bold
//
// Only the first family name of a line is used. Font collections (*.ttc) are
// skipped.
func parseFontConfigList(r io.Reader) ([]font.Descriptor, error) {
	var descs []font.Descriptor
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, ":", 3)
		if len(fields) < 2 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		family, _, _ := strings.Cut(strings.TrimSpace(fields[1]), ",")
		family = strings.TrimPrefix(family, ".")
		if family == "" {
			continue
		}
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		style := ""
		if len(fields) == 3 {
			style = strings.TrimPrefix(strings.TrimSpace(fields[2]), "style=")
			style, _, _ = strings.Cut(style, ",")
		}
		descs = append(descs, font.Descriptor{
			Family:   family,
			Path:     fontpath,
			Variants: []string{fontregistry.NormalizeVariant(style)},
		})
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return descs, scanner.Err()
}
