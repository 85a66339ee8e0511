// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package drive

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseConfirmPage extracts the confirmed download URL from the HTML
// interstitial Drive serves for files too large to virus-scan. The page
// carries a form whose hidden inputs (id, export, confirm, uuid) must be
// echoed back to the action URL. Older variants use a plain anchor with
// a confirm token instead. baseURL resolves relative actions and hrefs.
func parseConfirmPage(html []byte, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing confirmation page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	form := doc.Find("form#download-form")
	if form.Length() == 0 {
		form = doc.Find("form").FilterFunction(func(_ int, s *goquery.Selection) bool {
			action, _ := s.Attr("action")
			return strings.Contains(action, "download")
		})
	}

	if form.Length() > 0 {
		action, _ := form.First().Attr("action")
		actionURL, err := url.Parse(action)
		if err != nil {
			return "", fmt.Errorf("parsing form action %q: %w", action, err)
		}
		actionURL = base.ResolveReference(actionURL)

		params := actionURL.Query()
		form.First().Find("input[name]").Each(func(_ int, input *goquery.Selection) {
			name, _ := input.Attr("name")
			value, _ := input.Attr("value")
			params.Set(name, value)
		})
		actionURL.RawQuery = params.Encode()
		return actionURL.String(), nil
	}

	// Older interstitials link the token directly.
	var confirmed string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "confirm=") {
			return true
		}
		hu, err := url.Parse(href)
		if err != nil {
			return true
		}
		confirmed = base.ResolveReference(hu).String()
		return false
	})
	if confirmed != "" {
		return confirmed, nil
	}

	return "", fmt.Errorf("no download confirmation found in HTML response (file may exceed the download quota)")
}
