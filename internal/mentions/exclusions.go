package mentions

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"checky/internal/core"
)

// Mention-level exclusion rules, run in order against a grouped match. The
// first rule that fires drops the mention entirely.

func (e *Extractor) excluded(ctx context.Context, body, author string, account core.Account, m match, quoted, alts []span, links []postLink) bool {
	switch {
	case collidesWithAuthor(m.name, author):
		return true
	case e.hasIgnoredSuffix(m.name):
		return true
	case isIgnored(m.name, account):
		return true
	case inside(quoted, m.occs[0]):
		return true
	case altOnly(alts, m.occs):
		return true
	case e.sociallyContextualized(body, m.occs):
		return true
	case e.isLinkedPostTitle(ctx, m, links):
		return true
	}
	return false
}

// collidesWithAuthor treats a mention as a self-reference when it equals the
// author's username under a loose transliteration: digits, dots and hyphens
// stripped, case folded.
func collidesWithAuthor(name, author string) bool {
	return stripPunct(name) == stripPunct(author)
}

var punctStripper = strings.NewReplacer(
	"0", "", "1", "", "2", "", "3", "", "4", "",
	"5", "", "6", "", "7", "", "8", "", "9", "",
	".", "", "-", "",
)

func stripPunct(s string) string {
	return strings.ToLower(punctStripper.Replace(s))
}

// hasIgnoredSuffix drops file- and domain-shaped strings like photo.jpg or
// example.com.
func (e *Extractor) hasIgnoredSuffix(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	return e.suffixes[strings.ToLower(name[i+1:])]
}

func isIgnored(name string, account core.Account) bool {
	return slices.Contains(account.Ignored, name)
}

// sociallyContextualized reports whether any occurrence sits close to a
// third-party social-network reference ("insta @joe"), within the configured
// window on either side of the token.
func (e *Extractor) sociallyContextualized(body string, occs []occurrence) bool {
	for _, occ := range occs {
		start := clampLeft(body, occ.start-e.Config.SocialWindow)
		end := clampRight(body, occ.end+e.Config.SocialWindow)
		if e.socialRE.MatchString(body[start:occ.start]) || e.socialRE.MatchString(body[occ.end:end]) {
			return true
		}
	}
	return false
}

type span struct {
	start, end int
}

func inside(spans []span, occ occurrence) bool {
	for _, s := range spans {
		if occ.start >= s.start && occ.end <= s.end {
			return true
		}
	}
	return false
}

func altOnly(alts []span, occs []occurrence) bool {
	if len(alts) == 0 {
		return false
	}
	for _, occ := range occs {
		if !inside(alts, occ) {
			return false
		}
	}
	return true
}

var (
	fencedRE     = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRE = regexp.MustCompile("`[^`\n]*`")
	htmlCodeRE   = regexp.MustCompile(`(?is)<code>.*?</code>`)
	blockquoteRE = regexp.MustCompile(`(?is)<blockquote>.*?</blockquote>`)
	imageRE      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	imageAltRE   = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	imgTagRE     = regexp.MustCompile(`(?is)<img[^>]*>`)
	linkRE       = regexp.MustCompile(`(^|[^!])\[([^\]]+)\]\(([^)\s]+)\)`)
	postPathRE   = regexp.MustCompile(`/@([a-z0-9.-]+)/([a-z0-9-]+)`)
)

// quotedRegions collects the spans a mention must not start in: fenced code
// blocks, inline code spans, <code> elements and blockquotes, both markdown
// and HTML flavored.
func quotedRegions(body string) []span {
	var spans []span
	for _, re := range []*regexp.Regexp{fencedRE, inlineCodeRE, htmlCodeRE, blockquoteRE} {
		for _, loc := range re.FindAllStringIndex(body, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}

	// Markdown blockquotes are line-scoped.
	offset := 0
	for _, line := range strings.SplitAfter(body, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " "), ">") {
			spans = append(spans, span{offset, offset + len(line)})
		}
		offset += len(line)
	}
	return spans
}

// altRegions collects the alt-text spans of embedded images.
func altRegions(body string) []span {
	var spans []span
	for _, loc := range imageAltRE.FindAllStringSubmatchIndex(body, -1) {
		spans = append(spans, span{loc[2], loc[3]})
	}
	for _, loc := range imgTagRE.FindAllStringIndex(body, -1) {
		spans = append(spans, span{loc[0], loc[1]})
	}
	return spans
}

// postLink is a markdown hyperlink whose URL points at a post.
type postLink struct {
	textStart, textEnd int
	text               string
	author             string
	permlink           string
}

func postLinks(body string) []postLink {
	var links []postLink
	for _, loc := range linkRE.FindAllStringSubmatchIndex(body, -1) {
		url := body[loc[6]:loc[7]]
		path := postPathRE.FindStringSubmatch(url)
		if path == nil {
			continue
		}
		links = append(links, postLink{
			textStart: loc[4],
			textEnd:   loc[5],
			text:      body[loc[4]:loc[5]],
			author:    path[1],
			permlink:  path[2],
		})
	}
	return links
}

// isLinkedPostTitle drops a mention that names the author of a post linked
// from the body when the link text matches that post's title kebab-cased:
// the token is part of a cross-post reference, not a mention. The content
// lookup is best effort; on failure the exclusion is skipped.
func (e *Extractor) isLinkedPostTitle(ctx context.Context, m match, links []postLink) bool {
	for _, link := range links {
		if link.author != m.name {
			continue
		}
		covers := false
		for _, occ := range m.occs {
			if occ.start >= link.textStart && occ.end <= link.textEnd {
				covers = true
				break
			}
		}
		if !covers {
			continue
		}
		content, err := e.Content.GetContent(ctx, link.author, link.permlink)
		if err != nil {
			e.Logger.Warn("linked-post lookup failed", "author", link.author, "permlink", link.permlink, "error", err)
			continue
		}
		title := strings.TrimPrefix(link.text, "@"+m.name+"/")
		if kebab(content.Title) == kebab(title) {
			return true
		}
	}
	return false
}

// kebab normalizes a title the way permlinks are generated from titles.
func kebab(s string) string {
	var b strings.Builder
	dash := true
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func clampLeft(body string, i int) int {
	if i < 0 {
		return 0
	}
	for i > 0 && i < len(body) && body[i]&0xC0 == 0x80 {
		i--
	}
	return i
}

func clampRight(body string, i int) int {
	if i > len(body) {
		return len(body)
	}
	for i < len(body) && body[i]&0xC0 == 0x80 {
		i++
	}
	return i
}
