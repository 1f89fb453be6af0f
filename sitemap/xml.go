package sitemap

import (
	"context"
	"encoding/xml"
	"io"

	"github.com/a-h/templ"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	XMLNS    string       `xml:"xmlns,attr"`
	Sitemaps []indexEntry `xml:"sitemap"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

func indexXML(idx Index) templ.Component {
	doc := sitemapIndex{XMLNS: sitemapNS}
	for _, l := range append(append([]SectionLink{}, idx.PostTypes...), idx.Taxonomies...) {
		doc.Sitemaps = append(doc.Sitemaps, indexEntry{Loc: l.URL})
	}
	return xmlComponent(doc)
}

func sectionXML(sec Section) templ.Component {
	doc := urlSet{XMLNS: sitemapNS}
	for _, r := range sec.Rows {
		doc.URLs = append(doc.URLs, urlEntry{Loc: r.Loc, LastMod: FormatTime(r.LastMod)})
	}
	return xmlComponent(doc)
}

func xmlComponent(doc any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		return xml.NewEncoder(w).Encode(doc)
	})
}
