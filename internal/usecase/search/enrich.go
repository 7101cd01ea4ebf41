package search

import (
	"fmt"

	"github.com/kailas-cloud/dlf/internal/domain"
	"github.com/kailas-cloud/dlf/internal/domain/search/result"
	"github.com/kailas-cloud/dlf/internal/links"
)

// linkable is a hit that carries a viewer link.
type linkable interface {
	linkParams() links.Params
	setPageLink(link string)
}

type documentHit struct{ *result.DocumentHit }

func (h documentHit) linkParams() links.Params { return links.Params{Document: h.UID} }
func (h documentHit) setPageLink(link string) { h.PageLink = link }

type childHit struct{ *result.ChildHit }

func (h childHit) linkParams() links.Params { return links.Params{Document: h.UID} }
func (h childHit) setPageLink(link string) { h.PageLink = link }

type pageHit struct{ *result.PageHit }

func (h pageHit) linkParams() links.Params {
	return links.Params{Document: h.UID, Page: h.Page, HighlightWord: h.HighlightWord, SearchHit: true}
}

func (h pageHit) setPageLink(link string) { h.PageLink = link }

// enrichOne sets the page link of a single hit.
func enrichOne[T linkable](b LinkBuilder, targetPID int, hit T) error {
	link, err := b.Build(targetPID, hit.linkParams())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLinkBuild, err)
	}
	hit.setPageLink(link)
	return nil
}

// enrich sets the page link of every toplevel hit, its page results and its children, in place.
func enrich(b LinkBuilder, targetPID int, docs []result.DocumentHit) error {
	for i := range docs {
		doc := &docs[i]
		if err := enrichOne(b, targetPID, documentHit{doc}); err != nil {
			return err
		}
		for j := range doc.SearchResults {
			if err := enrichOne(b, targetPID, pageHit{&doc.SearchResults[j]}); err != nil {
				return err
			}
		}
		for j := range doc.Children {
			if err := enrichOne(b, targetPID, childHit{&doc.Children[j]}); err != nil {
				return err
			}
		}
	}
	return nil
}
