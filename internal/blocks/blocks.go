package blocks

import (
	"regexp"
	"strings"
)

// Block is one structural unit of post content in the block-comment
// markup dialect. Name is fully qualified ("core/paragraph"); a block
// with an empty Name is freeform HTML between block comments. The tree
// is rebuilt from markup on every pass and only its re-serialized form
// is persisted.
type Block struct {
	Name        string
	Attrs       string
	Void        bool
	InnerHTML   string
	InnerBlocks []*Block

	// InnerContent interleaves raw HTML fragments with child block
	// positions; a nil entry stands for the next entry of InnerBlocks.
	InnerContent []*string
}

var blockCommentRe = regexp.MustCompile(`(?s)<!--\s+(/)?wp:([a-z][a-z0-9_-]*/)?([a-z][a-z0-9_-]*)(\s+\{.*?\})?\s+(/)?-->`)

// Parse decomposes markup into a block tree. Unclosed blocks are closed
// at end of input.
func Parse(content string) []*Block {
	var output []*Block
	var stack []*Block

	appendBlock := func(blk *Block) {
		if len(stack) == 0 {
			output = append(output, blk)
			return
		}
		top := stack[len(stack)-1]
		top.InnerBlocks = append(top.InnerBlocks, blk)
		top.InnerContent = append(top.InnerContent, nil)
	}
	appendText := func(text string) {
		if text == "" {
			return
		}
		if len(stack) == 0 {
			frag := text
			output = append(output, &Block{InnerHTML: text, InnerContent: []*string{&frag}})
			return
		}
		top := stack[len(stack)-1]
		top.InnerHTML += text
		frag := text
		top.InnerContent = append(top.InnerContent, &frag)
	}

	pos := 0
	for _, loc := range blockCommentRe.FindAllStringSubmatchIndex(content, -1) {
		appendText(content[pos:loc[0]])
		pos = loc[1]

		closer := loc[2] != -1
		name := qualifyName(group(content, loc, 2), group(content, loc, 3))
		attrs := strings.TrimSpace(group(content, loc, 4))
		void := loc[10] != -1

		switch {
		case closer:
			if len(stack) == 0 {
				continue
			}
			blk := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				output = append(output, blk)
			} else {
				top := stack[len(stack)-1]
				top.InnerBlocks = append(top.InnerBlocks, blk)
				top.InnerContent = append(top.InnerContent, nil)
			}
		case void:
			appendBlock(&Block{Name: name, Attrs: attrs, Void: true})
		default:
			stack = append(stack, &Block{Name: name, Attrs: attrs})
		}
	}
	appendText(content[pos:])

	for len(stack) > 0 {
		blk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			output = append(output, blk)
		} else {
			top := stack[len(stack)-1]
			top.InnerBlocks = append(top.InnerBlocks, blk)
			top.InnerContent = append(top.InnerContent, nil)
		}
	}
	return output
}

// Serialize writes the tree back to markup. Untouched blocks round-trip
// byte-for-byte.
func Serialize(blks []*Block) string {
	var sb strings.Builder
	for _, blk := range blks {
		serializeBlock(&sb, blk)
	}
	return sb.String()
}

func serializeBlock(sb *strings.Builder, blk *Block) {
	if blk.Name == "" {
		sb.WriteString(blk.InnerHTML)
		return
	}
	name := commentName(blk.Name)
	attrs := ""
	if blk.Attrs != "" {
		attrs = " " + blk.Attrs
	}
	if blk.Void {
		sb.WriteString("<!-- wp:" + name + attrs + " /-->")
		return
	}
	sb.WriteString("<!-- wp:" + name + attrs + " -->")
	if len(blk.InnerContent) == 0 && len(blk.InnerBlocks) == 0 {
		sb.WriteString(blk.InnerHTML)
	} else {
		childIdx := 0
		for _, frag := range blk.InnerContent {
			if frag == nil {
				if childIdx < len(blk.InnerBlocks) {
					serializeBlock(sb, blk.InnerBlocks[childIdx])
					childIdx++
				}
				continue
			}
			sb.WriteString(*frag)
		}
	}
	sb.WriteString("<!-- /wp:" + name + " -->")
}

// SetInnerHTML replaces the block's raw markup wholesale; used after a
// leaf block's text has been rewritten.
func (b *Block) SetInnerHTML(markup string) {
	b.InnerHTML = markup
	frag := markup
	b.InnerContent = []*string{&frag}
	b.InnerBlocks = nil
}

func qualifyName(namespace, name string) string {
	if namespace == "" {
		return "core/" + name
	}
	return namespace + name
}

func commentName(qualified string) string {
	return strings.TrimPrefix(qualified, "core/")
}

func group(content string, loc []int, n int) string {
	if loc[2*n] == -1 {
		return ""
	}
	return content[loc[2*n]:loc[2*n+1]]
}
