package emit

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/glorpus-work/upmreg/pkg/errutils"
	"github.com/glorpus-work/upmreg/pkg/registry"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("index.html.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/index.html.tmpl"),
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// usageExampleLimit caps the dependencies shown in the usage snippet.
const usageExampleLimit = 2

type pageData struct {
	Title       string
	Description string
	Usage       string
	Majors      []string
	Packages    []packageCard
	RegistryURL string
	RepoURL     string
}

type packageCard struct {
	Title       string
	Name        string
	Latest      string
	Versions    []string
	Description template.HTML
}

// scopedRegistrySnippet is the Packages/manifest.json fragment shown to users.
type scopedRegistrySnippet struct {
	ScopedRegistries []scopedRegistry `json:"scopedRegistries"`
	Dependencies     json.RawMessage  `json:"dependencies"`
}

type scopedRegistry struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Scopes []string `json:"scopes"`
}

// WriteHTML renders <out>/index.html listing every package of root.
// majors names the buckets the registry was built from.
func (e *Emitter) WriteHTML(root *registry.Registry, majors []string) error {
	data, err := e.page(root, majors)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return errutils.Wrap(err, "failed to render index page")
	}
	return e.writeDocument(filepath.Join(e.OutputDir, HTMLFile), buf.Bytes())
}

func (e *Emitter) page(root *registry.Registry, majors []string) (pageData, error) {
	usage, err := e.usage(root)
	if err != nil {
		return pageData{}, err
	}

	cards := make([]packageCard, 0, root.Len())
	for _, name := range root.Names() {
		pkg, _ := root.Package(name)
		latest, _ := pkg.Version(pkg.Latest)

		var desc bytes.Buffer
		if err := markdown.Convert([]byte(latest.Description), &desc); err != nil {
			return pageData{}, errutils.Wrapf(err, "failed to render description of %s", name)
		}

		cards = append(cards, packageCard{
			Title:    latest.Title(),
			Name:     name,
			Latest:   pkg.Latest,
			Versions: registry.SortDescending(pkg.Versions()),
			// goldmark drops raw HTML unless WithUnsafe is set.
			Description: template.HTML(desc.String()), //nolint:gosec
		})
	}

	return pageData{
		Title:       e.Site.Title,
		Description: e.Site.Description,
		Usage:       usage,
		Majors:      majors,
		Packages:    cards,
		RegistryURL: e.Site.BaseURL,
		RepoURL:     e.Site.RepoURL,
	}, nil
}

// usage builds the scoped registry snippet, using the latest versions of the
// first packages as example dependencies.
func (e *Emitter) usage(root *registry.Registry) (string, error) {
	names := root.Names()
	if len(names) > usageExampleLimit {
		names = names[:usageExampleLimit]
	}

	var deps bytes.Buffer
	deps.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			deps.WriteByte(',')
		}
		pkg, _ := root.Package(name)
		pair, err := json.Marshal(map[string]string{name: pkg.Latest})
		if err != nil {
			return "", errutils.Wrap(err, "failed to encode usage snippet")
		}
		deps.Write(bytes.Trim(pair, "{}"))
	}
	deps.WriteByte('}')

	scopes := e.Site.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	snippet := scopedRegistrySnippet{
		ScopedRegistries: []scopedRegistry{{
			Name:   e.Site.ScopeName,
			URL:    e.Site.BaseURL,
			Scopes: scopes,
		}},
		Dependencies: deps.Bytes(),
	}
	out, err := encode(snippet)
	if err != nil {
		return "", errutils.Wrap(err, "failed to encode usage snippet")
	}
	return strings.TrimRight(string(out), "\n"), nil
}
