// Package frontmatter splits `---` delimited YAML metadata from Markdown
// bodies and decodes it into the typed docmodel.Frontmatter record.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docserve/internal/docmodel"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// reservedKeys are lifted into typed Frontmatter fields; everything else
// passes through Extra.
var reservedKeys = map[string]struct{}{
	"title":       {},
	"description": {},
	"order":       {},
	"icon":        {},
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is
// false and body is the full input. Both LF and CRLF documents are handled.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	frontmatterStart := len(open)
	closeLine := []byte("---" + nl)
	if bytes.HasPrefix(content[frontmatterStart:], closeLine) {
		bodyStart := frontmatterStart + len(closeLine)
		return []byte{}, content[bodyStart:], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[frontmatterStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	frontmatterEnd := frontmatterStart + idx + len(nl)
	bodyStart := frontmatterStart + idx + len(closeSeq)
	return content[frontmatterStart:frontmatterEnd], content[bodyStart:], true, nil
}

// Parse splits content and decodes the frontmatter block into a typed record.
//
// Malformed blocks fail closed: the whole input becomes the body and the
// returned Frontmatter is zero-valued. Parse never returns an error for bad
// metadata; degraded is true so callers can log the condition.
func Parse(content []byte) (fm docmodel.Frontmatter, body []byte, degraded bool) {
	raw, rest, had, err := Split(content)
	if err != nil {
		return docmodel.Frontmatter{}, content, true
	}
	if !had {
		return docmodel.Frontmatter{}, rest, false
	}

	fields, err := decodeYAML(raw)
	if err != nil {
		return docmodel.Frontmatter{}, content, true
	}

	return liftReserved(fields), rest, false
}

// decodeYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func decodeYAML(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// liftReserved moves reserved keys into typed fields and the remainder into Extra.
func liftReserved(fields map[string]any) docmodel.Frontmatter {
	var fm docmodel.Frontmatter

	if v, ok := fields["title"].(string); ok {
		fm.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		fm.Description = v
	}
	if v, ok := fields["icon"].(string); ok {
		fm.Icon = v
	}
	if n, ok := asInt(fields["order"]); ok {
		fm.Order = &n
	}

	for k, v := range fields {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		if fm.Extra == nil {
			fm.Extra = map[string]any{}
		}
		fm.Extra[k] = v
	}

	return fm
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func detectNewline(content []byte) string {
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			return "\r\n"
		}
		if content[i] == '\n' {
			return "\n"
		}
	}
	return "\n"
}
