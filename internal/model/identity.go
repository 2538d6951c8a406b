package model

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity identifies the company being screened. The URL is the primary
// identifier; Name and Domain are derived from it unless a source supplies
// a better value during normalization.
type Identity struct {
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
	Domain string `json:"domain,omitempty"`
}

var titleCaser = cases.Title(language.English)

// DeriveIdentity builds an Identity from a raw company URL. The domain is
// the host with any www prefix stripped; the name is guessed from the
// left-most domain label and title-cased.
func DeriveIdentity(rawURL string) (Identity, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Identity{}, eris.Wrapf(err, "model: parse company url %q", rawURL)
	}
	if u.Host == "" {
		return Identity{}, eris.Errorf("model: company url %q has no host", rawURL)
	}

	domain := strings.ToLower(u.Hostname())
	domain = strings.TrimPrefix(domain, "www.")

	label := domain
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	name := titleCaser.String(strings.ReplaceAll(label, "-", " "))

	return Identity{
		URL:    u.Scheme + "://" + u.Host + u.Path,
		Name:   name,
		Domain: domain,
	}, nil
}
