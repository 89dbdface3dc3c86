package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// extractHTML returns the visible text of an HTML page with whitespace collapsed. Text nodes
// are joined with spaces so adjacent block elements do not run together. The page title is
// kept as the first line when present.
func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	title := utils.CollapseSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template, head").Remove()

	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				parts = append(parts, c.Text())
				return
			}
			walk(c)
		})
	}
	walk(doc.Find("body"))

	body := utils.CollapseSpace(strings.Join(parts, " "))
	switch {
	case title == "":
		return body, nil
	case body == "":
		return title, nil
	}
	return title + "\n" + body, nil
}
