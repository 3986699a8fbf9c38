package pgen

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"go/format"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"

	"github.com/vugu/vgpage"
)

// Format selects what Generate writes.
type Format string

const (
	FormatGo   Format = "go"   // Go source defining the page map
	FormatJSON Format = "json" // flat {"title/<id>": ..., "body/<id>": ...} mapping
)

// Default block names looked for in templates.
const (
	DefaultTitleBlock = "title"
	DefaultBodyBlock  = "page"
)

// Default output file names, relative to the template directory.
const (
	DefaultGoOutput   = "0_pages_vgen.go"
	DefaultJSONOutput = "pages.json"
)

// New returns a new Generator instance.
func New() *Generator {
	return &Generator{
		format:     FormatGo,
		titleBlock: DefaultTitleBlock,
		bodyBlock:  DefaultBodyBlock,
		log:        logrus.StandardLogger(),
	}
}

// Generator reads page templates from a directory and writes the page registry data.
type Generator struct {
	dir         string                       // template directory
	output      string                       // output file, defaults depend on format
	packageName string                       // Go package name of the output file
	format      Format                       // output format
	titleBlock  string                       // inline block holding the title
	bodyBlock   string                       // inline block holding the body
	minify      bool                         // minify body markup
	idFunc      func(fileName string) string // derive page id from file name
	includeFunc func(fileName string) bool   // determine if a file should be read
	log         logrus.FieldLogger
}

// SetDir assigns the directory to read templates from.
func (g *Generator) SetDir(dir string) *Generator {
	g.dir = dir
	return g
}

// SetOutput sets the output file.  A relative path is relative to the current
// directory.  If unset the output goes into the template directory with a
// name that depends on the format.
func (g *Generator) SetOutput(output string) *Generator {
	g.output = output
	return g
}

// SetPackageName sets the package name of generated Go source.
// If not set, the base name of the output directory is used.
func (g *Generator) SetPackageName(packageName string) *Generator {
	g.packageName = packageName
	return g
}

// SetFormat sets the output format.
func (g *Generator) SetFormat(f Format) *Generator {
	g.format = f
	return g
}

// SetTitleBlock sets the inline block name that holds page titles.
func (g *Generator) SetTitleBlock(name string) *Generator {
	g.titleBlock = name
	return g
}

// SetBodyBlock sets the inline block name that holds page bodies.
func (g *Generator) SetBodyBlock(name string) *Generator {
	g.bodyBlock = name
	return g
}

// SetMinify enables HTML minification of page bodies.
func (g *Generator) SetMinify(v bool) *Generator {
	g.minify = v
	return g
}

// SetIDFunc sets the function which derives a page identifier from a template file name.
// If not set, DefaultIDFunc will be used.
func (g *Generator) SetIDFunc(f func(fileName string) string) *Generator {
	g.idFunc = f
	return g
}

// SetIncludeFunc sets the function which determines which files in the directory are templates.
// If not set, DefaultIncludeFunc will be used.
func (g *Generator) SetIncludeFunc(f func(fileName string) bool) *Generator {
	g.includeFunc = f
	return g
}

// SetLogger sets the logger used to report skipped pages.
func (g *Generator) SetLogger(l logrus.FieldLogger) *Generator {
	if l != nil {
		g.log = l
	}
	return g
}

// DefaultIDFunc returns the file name up to the first dot.
// E.g. "submit.hbs" returns "submit".
func DefaultIDFunc(fileName string) string {
	return strings.SplitN(fileName, ".", 2)[0]
}

// DefaultIncludeFunc returns true for any file which ends with .hbs.
func DefaultIncludeFunc(fileName string) bool {
	return strings.HasSuffix(fileName, ".hbs")
}

// Generate reads the templates and writes the output file.
func (g *Generator) Generate() error {

	flat, err := g.Read()
	if err != nil {
		return err
	}

	out := g.outputPath()

	var b []byte
	switch g.format {
	case FormatGo:
		b, err = g.goSource(out, flat)
	case FormatJSON:
		b, err = jsonSource(flat)
	default:
		err = fmt.Errorf("unknown output format %q", g.format)
	}
	if err != nil {
		return err
	}

	err = ioutil.WriteFile(out, b, 0644)
	if err != nil {
		return err
	}

	g.log.WithFields(logrus.Fields{"file": out, "format": g.format}).Info("pgen: wrote pages")

	return nil
}

// Read parses every included template in the directory and returns the flat
// title/body mapping.
func (g *Generator) Read() (map[string]string, error) {

	includeFunc := g.includeFunc
	if includeFunc == nil {
		includeFunc = DefaultIncludeFunc
	}
	idFunc := g.idFunc
	if idFunc == nil {
		idFunc = DefaultIDFunc
	}

	dir := g.dir
	if dir == "" {
		dir = "."
	}

	fis, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var m *minify.M
	if g.minify {
		m = minify.New()
		m.AddFunc("text/html", html.Minify)
	}

	flat := make(map[string]string)

	for _, fi := range fis {

		if fi.IsDir() || !includeFunc(fi.Name()) {
			continue
		}

		fpath := filepath.Join(dir, fi.Name())
		id := idFunc(fi.Name())

		blocks, err := readTemplateFile(fpath)
		if err != nil {
			return nil, err
		}

		title, hasTitle := blocks[g.titleBlock]
		body, hasBody := blocks[g.bodyBlock]
		if !hasTitle || !hasBody {
			g.log.WithFields(logrus.Fields{"file": fpath, "page": id}).Warn("pgen: template lacks title or body block")
		}

		if hasTitle {
			flat[vgpage.TitleKeyPrefix+id] = title
		}
		if hasBody {
			if m != nil {
				body, err = m.String("text/html", body)
				if err != nil {
					return nil, fmt.Errorf("error minifying body of %q: %w", fpath, err)
				}
			}
			flat[vgpage.BodyKeyPrefix+id] = body
		}
	}

	return flat, nil
}

func (g *Generator) outputPath() string {
	if g.output != "" {
		return g.output
	}
	name := DefaultGoOutput
	if g.format == FormatJSON {
		name = DefaultJSONOutput
	}
	return filepath.Join(g.dir, name)
}

func readTemplateFile(fpath string) (map[string]string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	blocks, err := ParseTemplate(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", fpath, err)
	}
	return blocks, nil
}

var errUnterminated = errors.New("unterminated inline block")

// ParseTemplate extracts the inline partial blocks from a Handlebars template and
// returns them keyed by name.  A block starts at a line beginning with
// {{#*inline "name"}} and ends at a line that is exactly {{/inline}}.
// Block content is trimmed of surrounding white space.
func ParseTemplate(r io.Reader) (map[string]string, error) {

	ret := make(map[string]string)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		if !strings.HasPrefix(line, "{{#*inline ") && !strings.HasPrefix(line, "{{#* inline ") {
			continue
		}

		name, err := blockName(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		startNo := lineNo
		var buf bytes.Buffer
		closed := false
		for sc.Scan() {
			lineNo++
			l := strings.TrimRight(sc.Text(), "\r")
			if l == "{{/inline}}" {
				closed = true
				break
			}
			buf.WriteByte('\n')
			buf.WriteString(l)
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		if !closed {
			return nil, fmt.Errorf("line %d: %w %q", startNo, errUnterminated, name)
		}

		ret[name] = strings.TrimSpace(buf.String())
	}

	if err := sc.Err(); err != nil {
		return nil, err
	}

	return ret, nil
}

// blockName reads the quoted name from a line like {{#*inline "page"}}
func blockName(line string) (string, error) {
	rest := strings.TrimSpace(strings.SplitN(line, "inline ", 2)[1])
	if !strings.HasSuffix(rest, "}}") {
		return "", fmt.Errorf("malformed inline block start %q", line)
	}
	q := strings.TrimSpace(strings.TrimSuffix(rest, "}}"))
	if len(q) >= 2 && q[0] == '\'' && q[len(q)-1] == '\'' {
		return q[1 : len(q)-1], nil
	}
	name, err := strconv.Unquote(q)
	if err != nil {
		return "", fmt.Errorf("malformed inline block name %q: %w", q, err)
	}
	return name, nil
}

func jsonSource(flat map[string]string) ([]byte, error) {
	// encoding/json writes map keys sorted
	b, err := json.MarshalIndent(flat, "", "\t")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

type goPage struct {
	ID string
	vgpage.PageRecord
}

func (g *Generator) goSource(out string, flat map[string]string) ([]byte, error) {

	pkg := g.packageName
	if pkg == "" {
		abs, err := filepath.Abs(filepath.Dir(out))
		if err != nil {
			return nil, err
		}
		pkg = filepath.Base(abs)
	}

	reg := vgpage.NewRegistryFromFlat(flat)
	pages := make([]goPage, 0, reg.Len())
	for _, id := range reg.IDs() {
		rec, _ := reg.Lookup(id)
		pages = append(pages, goPage{ID: id, PageRecord: rec})
	}

	t, err := template.New(DefaultGoOutput).
		Funcs(template.FuncMap{"Quote": strconv.Quote}).
		Parse(goTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = t.Execute(&buf, map[string]interface{}{
		"Package": pkg,
		"Pages":   pages,
	})
	if err != nil {
		return nil, err
	}

	b, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error formatting generated source: %w; full output:\n%s", err, buf.Bytes())
	}
	return b, nil
}

const goTemplate = `package {{.Package}}

// WARNING: This file was generated by vgpage/pgen. Do not modify.

import "github.com/vugu/vgpage"

// vgPageMap is the generated page mapping for this package.
// The key is the page identifier.
var vgPageMap = map[string]vgpage.PageRecord{
{{range .Pages}}	{{Quote .ID}}: {Title: {{Quote .Title}}, Body: {{Quote .Body}}},
{{end}}}

// MakeRegistry returns a registry of the pages in this package.
func MakeRegistry() *vgpage.Registry {
	return vgpage.NewRegistry(vgPageMap)
}
`
