package nlu

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tbourn/go-chat-companion/internal/domain"
)

// maxGazetteerWords is the longest multi-word gazetteer entry.
const maxGazetteerWords = 3

var (
	alnumRE        = regexp.MustCompile(`[\p{L}\p{N}]+`)
	quotedPhraseRE = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|‘([^’]+)’`)
)

// gazetteer maps a lowercased, space-joined token sequence to its kind and
// display form.
var gazetteer = buildGazetteer(map[domain.EntityKind][]string{
	domain.EntityPlace: {
		"Karbala", "Najaf", "Mashhad", "Mecca", "Makkah", "Medina", "Madinah",
		"Kufa", "Samarra", "Qom", "Kadhimiya", "Baghdad", "Damascus", "Jerusalem",
		"Jannat al-Baqi",
	},
	domain.EntityPerson: {
		"Prophet Muhammad", "Muhammad", "Imam Ali", "Ali", "Fatima", "Fatimah", "Khadija",
		"Hasan", "Hussain", "Husayn", "Imam Hussain", "Zainab", "Abbas", "Sajjad",
		"Baqir", "Sadiq", "Kadhim", "Reza", "Rida", "Jawad", "Hadi", "Askari", "Mahdi",
		"Imam Mahdi",
	},
	domain.EntityTopic: {
		"Ramadan", "Muharram", "Ashura", "Arbaeen", "Eid", "Eid al-Fitr", "Eid al-Adha",
		"Ghadir", "Hajj", "Umrah", "Quran", "Zakat", "Khums", "Sadaqah", "Laylat al-Qadr",
		"Dua Kumayl", "Ziyarat Ashura", "Jummah", "Tahajjud",
	},
})

type gazetteerEntry struct {
	kind    domain.EntityKind
	display string
}

func buildGazetteer(src map[domain.EntityKind][]string) map[string]gazetteerEntry {
	out := make(map[string]gazetteerEntry)
	for kind, names := range src {
		for _, n := range names {
			key := strings.Join(alnumRE.FindAllString(strings.ToLower(n), -1), " ")
			out[key] = gazetteerEntry{kind: kind, display: n}
		}
	}
	return out
}

// sentenceStarters are capitalised words that carry no entity meaning when
// they open a sentence or stand alone.
var sentenceStarters = map[string]struct{}{
	"i": {}, "what": {}, "who": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"which": {}, "is": {}, "are": {}, "can": {}, "could": {}, "do": {}, "does": {},
	"show": {}, "tell": {}, "take": {}, "open": {}, "please": {}, "hi": {}, "hello": {},
	"hey": {}, "the": {}, "a": {}, "an": {}, "my": {}, "today": {}, "salam": {},
}

type span struct {
	start  int
	entity domain.Entity
}

// ExtractEntities pulls places, people, and topics out of text (original
// casing). It is a lightweight tagger:
//   - gazetteer lookups over 1–3 token windows (longest match first),
//   - runs of capitalised tokens not covered by the gazetteer (topics),
//   - quoted phrases (topics).
//
// Results are ordered by first appearance and de-duplicated case-insensitively.
func ExtractEntities(text string) []domain.Entity {
	locs := alnumRE.FindAllStringIndex(text, -1)
	toks := make([]string, len(locs))
	for i, l := range locs {
		toks[i] = text[l[0]:l[1]]
	}

	var spans []span
	for i := 0; i < len(toks); {
		if n, e, ok := lookupGazetteer(toks, i); ok {
			spans = append(spans, span{start: locs[i][0], entity: e})
			i += n
			continue
		}
		if isCapitalized(toks[i]) && !isStarter(toks[i]) {
			j := i + 1
			for j < len(toks) && isCapitalized(toks[j]) && !isStarter(toks[j]) {
				if _, _, ok := lookupGazetteer(toks, j); ok {
					break
				}
				j++
			}
			if phrase := strings.Join(toks[i:j], " "); utf8.RuneCountInString(phrase) > 1 {
				spans = append(spans, span{start: locs[i][0], entity: domain.Entity{Text: phrase, Kind: domain.EntityTopic}})
			}
			i = j
			continue
		}
		i++
	}

	for _, m := range quotedPhraseRE.FindAllStringSubmatchIndex(text, -1) {
		for g := 1; g*2+1 < len(m); g++ {
			if m[g*2] < 0 {
				continue
			}
			if ph := strings.TrimSpace(text[m[g*2]:m[g*2+1]]); ph != "" {
				spans = append(spans, span{start: m[g*2], entity: domain.Entity{Text: ph, Kind: domain.EntityTopic}})
			}
		}
	}

	sort.SliceStable(spans, func(a, b int) bool { return spans[a].start < spans[b].start })

	out := make([]domain.Entity, 0, len(spans))
	seen := make(map[string]struct{}, len(spans))
	for _, s := range spans {
		k := strings.ToLower(s.entity.Text)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s.entity)
	}
	return out
}

// lookupGazetteer tries the longest window starting at toks[i] first.
func lookupGazetteer(toks []string, i int) (int, domain.Entity, bool) {
	for n := maxGazetteerWords; n >= 1; n-- {
		if i+n > len(toks) {
			continue
		}
		key := strings.ToLower(strings.Join(toks[i:i+n], " "))
		if g, ok := gazetteer[key]; ok {
			return n, domain.Entity{Text: g.display, Kind: g.kind}, true
		}
	}
	return 0, domain.Entity{}, false
}

func isStarter(tok string) bool {
	_, ok := sentenceStarters[strings.ToLower(tok)]
	return ok
}

func isCapitalized(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsUpper(r)
}
