package mentions

// excerpts renders the surrounding text of every occurrence: a bounded window
// around the token, embedded image markup stripped, the mention itself
// wrapped in strong markup for display by the !where command.
func (e *Extractor) excerpts(body string, m match) []string {
	out := make([]string, 0, len(m.occs))
	for _, occ := range m.occs {
		start := clampLeft(body, occ.start-e.Config.ExcerptWindow)
		end := clampRight(body, occ.end+e.Config.ExcerptWindow)

		before := stripImages(body[start:occ.start])
		after := stripImages(body[occ.end:end])
		out = append(out, before+"<strong>"+body[occ.start:occ.end]+"</strong>"+after)
	}
	return out
}

func stripImages(s string) string {
	s = imageRE.ReplaceAllString(s, "")
	return imgTagRE.ReplaceAllString(s, "")
}
