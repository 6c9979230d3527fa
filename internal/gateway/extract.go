package gateway

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Extractor pulls one JSON object out of a free-text reply.
type Extractor interface {
	Extract(reply string) (string, error)
}

// BraceScanner takes the first '{' and tries every later '}' as the end of
// the object, shortest candidate first. When that finds nothing it looks
// inside markdown code fences.
type BraceScanner struct{}

func (BraceScanner) Extract(reply string) (string, error) {
	if obj, ok := scanBraces(reply); ok {
		return obj, nil
	}
	for _, block := range fencedBlocks(reply) {
		if isObject(block) {
			return block, nil
		}
		if obj, ok := scanBraces(block); ok {
			return obj, nil
		}
	}
	return "", ErrNoJSON
}

func scanBraces(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	for i := start + 1; i < len(text); i++ {
		if text[i] != '}' {
			continue
		}
		if candidate := text[start : i+1]; isObject(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func fencedBlocks(text string) []string {
	parts := strings.Split(text, "```")
	var blocks []string
	for i := 1; i < len(parts); i += 2 {
		if i == len(parts)-1 {
			break // unterminated fence
		}
		block := parts[i]
		if nl := strings.IndexByte(block, '\n'); nl >= 0 && !strings.ContainsAny(block[:nl], "{[") {
			block = block[nl+1:]
		}
		blocks = append(blocks, strings.TrimSpace(block))
	}
	return blocks
}

func isObject(s string) bool {
	return gjson.Valid(s) && gjson.Parse(s).IsObject()
}
