// Package segment partitions a page's DOM into candidate "staff entry"
// blocks without any page-specific configuration.
//
// Athletics sites run on wildly different templates, so segmentation is a
// prioritized heuristic cascade: roster tables first (most reliable), then
// known CMS class selectors, then generic tags, then the whole page as a
// single block. The cascade trades precision for robustness; the classifiers
// downstream supply the precision.
package segment

import (
	"github.com/PuerkitoBio/goquery"

	"coachmail/internal/emailparser"
	"coachmail/internal/textnorm"
)

// Segmentation bounds for the selector cascade: fewer than minBlocks matches
// means the selector did not find a roster; more than maxBlocks means
// non-semantic div soup.
const (
	minBlocks = 5
	maxBlocks = 400
)

// blockSelectors is the ordered candidate list tried after roster tables:
// staff-directory classes from common athletics CMS templates first, generic
// tags last. Ordered configuration data; extend without touching Segment.
var blockSelectors = []string{
	".sidearm-staff-directory__item",
	".sidearm-roster-coach",
	".staff-member",
	".coaches-item",
	".coach",
	".bio",
	"article",
	"li",
	"div",
}

// Block is one candidate staff entry: a DOM subtree plus its derived
// normalized text. Blocks live only for the duration of one page's
// processing.
type Block struct {
	Sel *goquery.Selection

	// Text is the block's visible text, de-obfuscated then normalized.
	// All role and sport classification runs against this string.
	Text string
}

func newBlock(sel *goquery.Selection) Block {
	return Block{
		Sel:  sel,
		Text: textnorm.Normalize(textnorm.Deobfuscate(emailparser.JoinedText(sel))),
	}
}

// Segment partitions doc into candidate blocks, deterministic for identical
// markup, DOM order preserved.
//
// Cascade, first satisfied wins:
//  1. table rows, when the page has at least minBlocks of them;
//  2. the first blockSelectors entry matching within [minBlocks, maxBlocks];
//  3. the body element (or the whole document) as a single block.
func Segment(doc *goquery.Document) []Block {
	if rows := doc.Find("table tr"); rows.Length() >= minBlocks {
		return collect(rows)
	}

	for _, sel := range blockSelectors {
		els := doc.Find(sel)
		if n := els.Length(); n >= minBlocks && n <= maxBlocks {
			return collect(els)
		}
	}

	if body := doc.Find("body"); body.Length() > 0 {
		return []Block{newBlock(body.First())}
	}
	return []Block{newBlock(doc.Selection)}
}

func collect(els *goquery.Selection) []Block {
	blocks := make([]Block, 0, els.Length())
	els.Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, newBlock(s))
	})
	return blocks
}
