package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/vugu/vgpage/pgen"
)

// config is the content of a vgpgen TOML file, e.g.:
//
//	dir = "templates"
//	output = "static/pages.json"
//	format = "json"
//	title_block = "screen_name"
//	minify = true
type config struct {
	Dir        string `toml:"dir"`
	Output     string `toml:"output"`
	Package    string `toml:"package"`
	Format     string `toml:"format"`
	TitleBlock string `toml:"title_block"`
	BodyBlock  string `toml:"body_block"`
	Minify     bool   `toml:"minify"`
}

func defaultConfig() config {
	return config{
		Dir:        ".",
		Format:     string(pgen.FormatGo),
		TitleBlock: pgen.DefaultTitleBlock,
		BodyBlock:  pgen.DefaultBodyBlock,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return cfg, fmt.Errorf("unknown config key %q", undec[0].String())
	}
	switch pgen.Format(cfg.Format) {
	case pgen.FormatGo, pgen.FormatJSON:
	default:
		return cfg, fmt.Errorf("unknown format %q", cfg.Format)
	}
	return cfg, nil
}

func (c config) generator() *pgen.Generator {
	return pgen.New().
		SetDir(c.Dir).
		SetOutput(c.Output).
		SetPackageName(c.Package).
		SetFormat(pgen.Format(c.Format)).
		SetTitleBlock(c.TitleBlock).
		SetBodyBlock(c.BodyBlock).
		SetMinify(c.Minify)
}
