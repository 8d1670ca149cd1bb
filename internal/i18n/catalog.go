// Package i18n loads the site's message catalogs and picks a locale per
// request.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// Fallback is served when nothing else matches, and fills missing keys.
var Fallback = language.English

type Catalog struct {
	tags     []language.Tag
	matcher  language.Matcher
	messages map[language.Tag]map[string]string
}

// Load reads the embedded catalogs.
func Load() (*Catalog, error) {
	return LoadFS(localeFiles, "locales")
}

// LoadFS reads every <tag>.yaml in dir.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalogs: %w", err)
	}

	c := &Catalog{messages: make(map[language.Tag]map[string]string)}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", name, err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
		msgs := make(map[string]string)
		flatten("", tree, msgs)
		c.messages[tag] = msgs
		c.tags = append(c.tags, tag)
	}
	if _, ok := c.messages[Fallback]; !ok {
		return nil, fmt.Errorf("catalogs: missing fallback locale %s", Fallback)
	}

	// The fallback goes first so the matcher defaults to it.
	sort.SliceStable(c.tags, func(i, j int) bool {
		if c.tags[i] == Fallback {
			return true
		}
		if c.tags[j] == Fallback {
			return false
		}
		return c.tags[i].String() < c.tags[j].String()
	})
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Locales lists the supported locales, fallback first.
func (c *Catalog) Locales() []language.Tag {
	out := make([]language.Tag, len(c.tags))
	copy(out, c.tags)
	return out
}

// Match picks the best supported locale for the given preferences, each
// a tag or an Accept-Language value, most important first.
func (c *Catalog) Match(preferences ...string) language.Tag {
	_, idx := language.MatchStrings(c.matcher, preferences...)
	return c.tags[idx]
}

// Translator returns message lookup for tag.
func (c *Catalog) Translator(tag language.Tag) Translator {
	msgs, ok := c.messages[tag]
	if !ok {
		tag = Fallback
		msgs = c.messages[Fallback]
	}
	return Translator{tag: tag, msgs: msgs, fallback: c.messages[Fallback]}
}

type Translator struct {
	tag      language.Tag
	msgs     map[string]string
	fallback map[string]string
}

func (t Translator) Locale() language.Tag {
	return t.tag
}

func (t Translator) Lang() string {
	base, _ := t.tag.Base()
	return base.String()
}

// T returns the message for key, the fallback locale's message, or the key
// itself.
func (t Translator) T(key string) string {
	if m, ok := t.msgs[key]; ok {
		return m
	}
	if m, ok := t.fallback[key]; ok {
		return m
	}
	return key
}

// Segment is a run of rich text. Tag is empty for plain text.
type Segment struct {
	Tag  string
	Text string
}

var richTag = regexp.MustCompile(`<([a-z_]+)>([^<]*)</([a-z_]+)>`)

// Rich splits a message with <tag>chunk</tag> placeholders into segments.
// Mismatched tags are kept as plain text.
func (t Translator) Rich(key string) []Segment {
	msg := t.T(key)
	var segs []Segment
	last := 0
	for _, m := range richTag.FindAllStringSubmatchIndex(msg, -1) {
		open, text, closing := msg[m[2]:m[3]], msg[m[4]:m[5]], msg[m[6]:m[7]]
		if open != closing {
			continue
		}
		if m[0] > last {
			segs = append(segs, Segment{Text: msg[last:m[0]]})
		}
		segs = append(segs, Segment{Tag: open, Text: text})
		last = m[1]
	}
	if last < len(msg) {
		segs = append(segs, Segment{Text: msg[last:]})
	}
	return segs
}
