package chi

import (
	"encoding/xml"
	"net/http"
	"time"

	domfeed "github.com/kailas-cloud/dlf/internal/domain/feed"
)

const rssContentType = "application/rss+xml; charset=utf-8"

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Copyright   string    `xml:"copyright,omitempty"`
	PubDate     string    `xml:"pubDate"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	Description string  `xml:"description,omitempty"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// rssFrom renders f as an RSS 2.0 document. The channel pubDate is the newest item date.
func rssFrom(f domfeed.Feed, now time.Time) rssDocument {
	ch := rssChannel{
		Title:       f.Title,
		Link:        f.Link,
		Description: f.Description,
		Copyright:   f.Copyright,
		PubDate:     now.UTC().Format(time.RFC1123Z),
		Items:       make([]rssItem, 0, len(f.Items)),
	}

	for i, it := range f.Items {
		item := rssItem{
			Title:       it.Title,
			Link:        it.Link,
			Description: it.Description,
			GUID:        rssGUID{Value: it.GUID},
		}
		if !it.PubDate.IsZero() {
			item.PubDate = it.PubDate.UTC().Format(time.RFC1123Z)
			if i == 0 {
				ch.PubDate = item.PubDate
			}
		}
		ch.Items = append(ch.Items, item)
	}

	return rssDocument{Version: "2.0", Channel: ch}
}

func writeRSS(w http.ResponseWriter, f domfeed.Feed) {
	w.Header().Set("Content-Type", rssContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	_ = enc.Encode(rssFrom(f, time.Now()))
}
