package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rmmh/isoview/go/config"
	"github.com/rmmh/isoview/go/preview"
	"github.com/rmmh/isoview/go/render"
	rp "github.com/rmmh/isoview/go/resourcepack"
)

type packList []string

func (p *packList) String() string { return strings.Join(*p, ",") }

func (p *packList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: isoview [flags] <command> [args]

commands:
  serve                   serve previews over HTTP
  render <asset> [state]  print one asset's preview as JSON
  states <asset>          print the properties of an asset's blockstate
  download [dest]         fetch the client jar

flags:`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "isoview.toml", "TOML config file")
	listen := flag.String("listen", "", "address to serve on")
	var packs packList
	flag.Var(&packs, "pack", "resource pack directory or zip, highest priority first (repeatable)")
	scale := flag.Float64("scale", 0, "pixels per model unit")
	workers := flag.Int("workers", 0, "geometry worker goroutines, 0 for in process")
	cacheDB := flag.String("cache", "", "sqlite preview cache")
	version := flag.String("version", "", "minecraft version of the client jar")
	jarDir := flag.String("jar-dir", "", "directory for downloaded client jars")
	remote := flag.String("remote", "", "ws:// URL of a remote geometry worker")
	verify := flag.Bool("verify", false, "check that pack files survive a decode round trip")
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	// explicitly set flags override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "pack":
			cfg.Packs = packs
		case "scale":
			cfg.Scale = *scale
		case "workers":
			cfg.Workers = *workers
		case "cache":
			cfg.CacheDB = *cacheDB
		case "version":
			cfg.MinecraftVersion = *version
		case "jar-dir":
			cfg.JarDir = *jarDir
		case "remote":
			cfg.RemoteWorker = *remote
		case "verify":
			cfg.VerifyPacks = *verify
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "serve":
		serve(cfg)
	case "render":
		if len(args) < 2 {
			usage()
			os.Exit(2)
		}
		renderAsset(cfg, args[1], strings.Join(args[2:], ","))
	case "states":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		printStates(cfg, args[1])
	case "download":
		dest := jarPath(cfg)
		if len(args) > 1 {
			dest = args[1]
		}
		if err := rp.DownloadMinecraftJar(dest, cfg.MinecraftVersion); err != nil {
			log.Fatal(err)
		}
		fmt.Println(dest)
	default:
		usage()
		os.Exit(2)
	}
}

func jarPath(cfg *config.Config) string {
	return filepath.Join(cfg.JarDir, "client-"+cfg.MinecraftVersion+".jar")
}

// openStack loads the configured packs followed by the client jar. The jar
// is optional when other packs are given.
func openStack(cfg *config.Config) (rp.Stack, error) {
	opts := rp.LoadOptions{Verify: cfg.VerifyPacks}
	var stack rp.Stack
	for _, path := range cfg.Packs {
		p, err := rp.OpenPack(path, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "opening pack %s", path)
		}
		stack = append(stack, p)
	}

	jar := ""
	if cfg.MinecraftVersion == "latest" {
		jar = rp.FindMinecraftJar()
	}
	if jar == "" {
		jar = jarPath(cfg)
		if err := rp.DownloadMinecraftJar(jar, cfg.MinecraftVersion); err != nil {
			if len(stack) > 0 {
				log.Println("continuing without client jar:", err)
				return stack, nil
			}
			return nil, err
		}
	}
	p, err := rp.OpenPack(jar, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening client jar %s", jar)
	}
	return append(stack, p), nil
}

func mustStack(cfg *config.Config) rp.Stack {
	stack, err := openStack(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return stack
}

func requestState(stack rp.Stack, assetID, raw string) map[string]string {
	if raw != "" {
		return rp.ParseProperties(raw)
	}
	if st, err := stack.BlockState(assetID); err == nil {
		return render.DefaultState(st)
	}
	return map[string]string{}
}

func renderAsset(cfg *config.Config, assetID, state string) {
	stack := mustStack(cfg)
	engine := preview.NewEngine(stack, nil, nil)
	res, err := engine.Preview(context.Background(), nil, assetID, requestState(stack, assetID, state), cfg.Scale)
	if err != nil {
		log.Fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal(err)
	}
}

func printStates(cfg *config.Config, assetID string) {
	st, err := mustStack(cfg).BlockState(assetID)
	if err != nil {
		log.Fatal(err)
	}
	for _, attr := range render.StateList(st) {
		fmt.Println(strings.Join(attr, " "))
	}
}
