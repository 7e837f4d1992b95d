package scrape

import (
	"fmt"
	"strings"

	"tierlist/internal/domain"
	"tierlist/internal/provider"

	"github.com/PuerkitoBio/goquery"
)

// ParseSearchResults reads the candidate list of a rendered search page.
func ParseSearchResults(html string, cfg SearchConfig) ([]domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w: %v", domain.ErrUpstream, err)
	}

	var candidates []domain.Candidate
	doc.Find(cfg.Results).Find(cfg.Item).Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr(cfg.IDAttr)
		if !ok {
			id, _ = s.Find("[" + cfg.IDAttr + "]").First().Attr(cfg.IDAttr)
		}
		id = strings.TrimSpace(id)
		if id == "" {
			return
		}

		c := domain.Candidate{ProviderID: id}
		if cfg.Name != "" {
			c.DisplayName = strings.TrimSpace(s.Find(cfg.Name).First().Text())
		}
		if cfg.Lookups != "" {
			if n := provider.ParseInt(s.Find(cfg.Lookups).First().Text()); n != nil {
				c.LookupCount = *n
			}
		}
		if cfg.Aliases != "" {
			s.Find(cfg.Aliases).Each(func(_ int, a *goquery.Selection) {
				if alias := strings.TrimSpace(a.Text()); alias != "" {
					c.Aliases = append(c.Aliases, alias)
				}
			})
		}
		candidates = append(candidates, c)
	})

	return candidates, nil
}

// ExtractFields finds stats on a rendered profile page by their label text.
// A label is a leaf element whose text matches a configured label; its value
// is the next sibling, the rest of the parent's text, or the parent's next
// sibling, in that order. Labels that are absent simply yield no field.
func ExtractFields(html string, cfg *Config) (map[string]string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse profile page: %w: %v", domain.ErrUpstream, err)
	}

	if cfg.Profile.NotFound != "" && doc.Find(cfg.Profile.NotFound).Length() > 0 {
		return nil, true, nil
	}

	index := cfg.labelIndex()
	fields := make(map[string]string)

	doc.Find("body *").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() > 0 {
			return
		}
		field, ok := index[normalizeLabel(s.Text())]
		if !ok {
			return
		}
		if _, done := fields[field]; done {
			return
		}
		if v := valueFor(s); v != "" {
			fields[field] = v
		}
	})

	if cfg.Profile.DisplayName != "" {
		if name := strings.TrimSpace(doc.Find(cfg.Profile.DisplayName).First().Text()); name != "" {
			fields[provider.FieldDisplayName] = name
		}
	}

	return fields, false, nil
}

func valueFor(label *goquery.Selection) string {
	if v := cleanText(label.Next().Text()); v != "" {
		return v
	}

	parent := label.Parent()
	rest := strings.Replace(parent.Text(), label.Text(), "", 1)
	if v := strings.TrimLeft(cleanText(rest), ": "); v != "" {
		return v
	}

	return cleanText(parent.Next().Text())
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
