package resourcepack

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/nsf/jsondiff"
	"github.com/pkg/errors"
)

func jsonGrab(url string, val interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(val)
}

// DownloadMinecraftJar fetches the vanilla client jar for version ("latest"
// for the newest release) unless dest already exists.
func DownloadMinecraftJar(dest, version string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	manifest := struct {
		Latest struct {
			Release string `json:"release"`
		} `json:"latest"`
		Versions []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		}
	}{}
	err := jsonGrab("https://launchermeta.mojang.com/mc/game/version_manifest.json", &manifest)
	if err != nil {
		return errors.Wrap(err, "fetching version manifest")
	}
	if version == "latest" {
		version = manifest.Latest.Release
		slog.Info("resolved latest release", "version", version)
	}
	versionManifestURL := ""
	for _, v := range manifest.Versions {
		if v.ID == version {
			versionManifestURL = v.URL
			break
		}
	}
	if versionManifestURL == "" {
		return errors.Errorf("unable to find release version %s", version)
	}

	versionManifest := struct {
		Downloads map[string]struct {
			URL string `json:"url"`
		} `json:"downloads"`
	}{}
	if err := jsonGrab(versionManifestURL, &versionManifest); err != nil {
		return errors.Wrapf(err, "fetching manifest for %s", version)
	}

	clientJarURL := versionManifest.Downloads["client"].URL
	if clientJarURL == "" {
		return errors.Errorf("no client download for %s", version)
	}

	resp, err := http.Get(clientJarURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		os.Remove(dest)
		return err
	}
	slog.Info("downloaded client jar", "version", version, "MiB", fmt.Sprintf("%.2f", float64(size)/1024/1024))
	return nil
}

// FindMinecraftJar returns the most recently released client jar installed
// by the vanilla launcher, or "" if there is none.
func FindMinecraftJar() string {
	return findJar(filepath.Join(os.Getenv("HOME"), ".minecraft", "versions"))
}

func findJar(versionsDir string) string {
	entries, err := os.ReadDir(versionsDir)
	if err != nil {
		return ""
	}
	latestJar, latestTime := "", ""
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(versionsDir, e.Name())
		jar := filepath.Join(dir, e.Name()+".jar")
		if _, err := os.Stat(jar); err != nil {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(dir, e.Name()+".json"))
		if err != nil {
			continue
		}
		info := struct {
			ReleaseTime string `json:"releaseTime"`
			Time        string `json:"time"`
		}{}
		if json.Unmarshal(buf, &info) != nil {
			continue
		}
		t := info.ReleaseTime
		if t == "" {
			t = info.Time
		}
		if t > latestTime {
			latestTime, latestJar = t, jar
		}
	}
	return latestJar
}

type LoadOptions struct {
	// Verify re-encodes every decoded JSON file and logs a diff when the
	// round trip loses information.
	Verify bool
}

var assetRe = regexp.MustCompile(`^assets/(\w+)/(\w+)/(.*?)\.(.*)$`)

// OpenPack loads a pack from a .zip/.jar archive or an unpacked directory.
func OpenPack(path string, opts LoadOptions) (*Pack, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	if st.IsDir() {
		return LoadFS(name, os.DirFS(path), opts)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer zr.Close()
	return LoadFS(name, zr, opts)
}

// LoadFS reads blockstates, models and textures from the assets/ tree of fsys.
func LoadFS(name string, fsys fs.FS, opts LoadOptions) (*Pack, error) {
	pack := NewPack(name)
	mismatches := 0

	err := fs.WalkDir(fsys, "assets", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == "assets" {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := assetRe.FindStringSubmatch(path)
		if m == nil {
			return nil
		}
		ns, kind, assetName, ext := m[1], m[2], m[3], m[4]
		id := ns + ":" + assetName

		switch {
		case ext == "png" && kind == "textures":
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			pack.Textures[id] = data
		case ext == "json" && (kind == "models" || kind == "blockstates"):
			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			var decode any
			if kind == "models" {
				model := &Model{}
				if err := json.Unmarshal(data, model); err != nil {
					return errors.Wrapf(err, "unable to decode %s", path)
				}
				pack.Models[id] = model
				decode = model
			} else {
				bs := &BlockState{}
				if err := json.Unmarshal(data, bs); err != nil {
					return errors.Wrapf(err, "unable to decode %s", path)
				}
				pack.BlockStates[id] = bs
				decode = bs
			}
			if opts.Verify && !roundTrips(path, data, decode) {
				mismatches++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if mismatches > 0 {
		slog.Warn("pack decode mismatches", "pack", name, "count", mismatches)
	}
	slog.Info("loaded pack", "pack", name,
		"blockstates", len(pack.BlockStates), "models", len(pack.Models), "textures", len(pack.Textures))
	return pack, nil
}

func roundTrips(path string, data []byte, decoded any) bool {
	var got, want any
	json.Unmarshal(data, &want)
	buf, _ := json.Marshal(decoded)
	json.Unmarshal(buf, &got)
	if reflect.DeepEqual(got, want) {
		return true
	}
	opts := jsondiff.DefaultConsoleOptions()
	opts.CompareNumbers = func(a, b json.Number) bool {
		av, _ := a.Float64()
		bv, _ := b.Float64()
		return av == bv
	}
	diff, str := jsondiff.Compare(data, buf, &opts)
	if diff == jsondiff.FullMatch {
		return true
	}
	slog.Warn("mismatch decoding", "file", path, "diff", diff.String(), "detail", strings.TrimSpace(str))
	return false
}
