package preview

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
)

// Markup summarizes an HTML or XML body, typically a proxy or gateway error
// page returned instead of a GraphQL response.
type Markup struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitzero"`
	Root        string   `json:"root,omitempty"`    // XML document element
	Message     string   `json:"message,omitempty"` // first <message> or <faultstring>, any case
	Text        string   `json:"text,omitempty"`
}

const maxHeadings = 5

const messageXPath = "//*[translate(local-name(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz') = 'message' or " +
	"translate(local-name(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz') = 'faultstring']"

// SummarizeMarkup parses a text result whose Category is HTML or XML. It
// returns nil for any other result or when the body cannot be parsed.
// maxText bounds the extracted text; zero means unbounded.
func SummarizeMarkup(res *Result, maxText int) *Markup {
	if res == nil || res.Kind != KindText {
		return nil
	}
	switch res.Category {
	case CategoryHTML:
		return summarizeHTML(res.Text, maxText)
	case CategoryXML:
		return summarizeXML(res.Text, maxText)
	}
	return nil
}

func summarizeHTML(body string, maxText int) *Markup {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	m := &Markup{Title: collapse(doc.Find("title").First().Text())}
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if len(m.Headings) >= maxHeadings {
			return
		}
		if t := collapse(s.Text()); t != "" {
			m.Headings = append(m.Headings, t)
		}
	})
	doc.Find("script, style, noscript").Remove()
	m.Text = trimString(collapse(doc.Find("body").Text()), maxText)

	if node, err := htmlquery.Parse(strings.NewReader(body)); err == nil {
		if meta := htmlquery.FindOne(node, "//meta[@name='description']"); meta != nil {
			m.Description = collapse(htmlquery.SelectAttr(meta, "content"))
		}
	}
	return m
}

func summarizeXML(body string, maxText int) *Markup {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}

	m := &Markup{}
	if root := xmlquery.FindOne(doc, "/*"); root != nil {
		m.Root = root.Data
	}
	msg, err := xmlquery.Query(doc, messageXPath)
	if err == nil && msg != nil {
		m.Message = collapse(msg.InnerText())
	}
	m.Text = trimString(collapse(doc.InnerText()), maxText)
	return m
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
