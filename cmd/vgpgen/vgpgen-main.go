package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vugu/vgpage/pgen"
)

func main() {

	configFile := flag.String("c", "", "Optional TOML config file; flags override its values")
	output := flag.String("o", "", "Output file.  Defaults to "+pgen.DefaultGoOutput+" or "+pgen.DefaultJSONOutput+" in the template directory")
	packageName := flag.String("p", "", "Package name of generated Go source.  Defaults to the output directory name")
	jsonOut := flag.Bool("json", false, "Write the flat title/body JSON mapping instead of Go source")
	minify := flag.Bool("minify", false, "Minify page bodies")
	titleBlock := flag.String("title", "", "Inline block holding the page title (default \""+pgen.DefaultTitleBlock+"\"); use -title screen_name for legacy templates")
	bodyBlock := flag.String("body", "", "Inline block holding the page body (default \""+pgen.DefaultBodyBlock+"\")")
	q := flag.Bool("q", false, "Only print information upon error (quiet mode)")

	flag.Parse()

	log := logrus.New()
	if *q {
		log.SetLevel(logrus.WarnLevel)
	}

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = loadConfig(*configFile)
		if err != nil {
			log.WithError(err).WithField("file", *configFile).Fatal("Error loading config")
		}
	}

	// only flags given explicitly override the config
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = *output
		case "p":
			cfg.Package = *packageName
		case "json":
			if *jsonOut {
				cfg.Format = string(pgen.FormatJSON)
			} else {
				cfg.Format = string(pgen.FormatGo)
			}
		case "minify":
			cfg.Minify = *minify
		case "title":
			cfg.TitleBlock = *titleBlock
		case "body":
			cfg.BodyBlock = *bodyBlock
		}
	})

	if args := flag.Args(); len(args) > 0 {
		if len(args) > 1 {
			log.Fatal("Only one template directory may be given")
		}
		cfg.Dir = args[0]
	}

	log.WithField("dir", cfg.Dir).Info("Processing page templates")

	err := cfg.generator().SetLogger(log).Generate()
	if err != nil {
		log.WithError(err).Error("Generation failed")
		os.Exit(1)
	}

}
