package textnorm

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
)

//go:embed data/stopwords_pt.txt data/lemmas_pt.tsv
var embeddedData embed.FS

// ResourceVersion identifies the bundled Portuguese resource set.
const ResourceVersion = "pt-2024.1"

// suffixRule reduces a plural suffix to its singular form. Rules are applied
// in order; the first match wins.
type suffixRule struct {
	suffix      string
	replacement string
	minStemLen  int
}

// pluralRules is the fixed suffix-reduction rule set for Portuguese nouns,
// ordered longest suffix first.
var pluralRules = []suffixRule{
	{"ões", "ão", 2},
	{"ães", "ão", 2},
	{"ais", "al", 2},
	{"éis", "el", 2},
	{"óis", "ol", 2},
	{"eis", "el", 2},
	{"zes", "z", 2},
	{"res", "r", 3},
	{"ens", "em", 2},
	{"ns", "m", 2},
	{"s", "", 3},
}

// Resources is the read-only language resource bundle the normalizer is
// constructed with. It is loaded once at process start and never mutated.
type Resources struct {
	version   string
	stopwords map[string]struct{}
	lemmas    map[string]string
}

// Version returns the resource bundle version.
func (r *Resources) Version() string {
	return r.version
}

// IsStopword reports whether the token is in the stopword set.
func (r *Resources) IsStopword(token string) bool {
	_, ok := r.stopwords[token]
	return ok
}

// Lemma returns the lemma for a token: the dictionary entry when one exists,
// otherwise the result of the plural suffix-reduction rules.
func (r *Resources) Lemma(token string) string {
	if lemma, ok := r.lemmas[token]; ok {
		return lemma
	}
	for _, rule := range pluralRules {
		if strings.HasSuffix(token, rule.suffix) {
			stem := strings.TrimSuffix(token, rule.suffix)
			if len([]rune(stem)) >= rule.minStemLen {
				return stem + rule.replacement
			}
		}
	}
	return token
}

// LoadDefaultResources loads the embedded Portuguese resource bundle.
func LoadDefaultResources() (*Resources, error) {
	stopData, err := embeddedData.ReadFile("data/stopwords_pt.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded stopwords: %w", err)
	}
	lemmaData, err := embeddedData.ReadFile("data/lemmas_pt.tsv")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded lemma table: %w", err)
	}
	return buildResources(stopData, lemmaData)
}

// LoadResources loads a resource bundle, preferring the given file paths and
// falling back to the embedded defaults for any empty path.
func LoadResources(stopwordsPath, lemmasPath string) (*Resources, error) {
	if stopwordsPath == "" && lemmasPath == "" {
		return LoadDefaultResources()
	}

	stopData, err := readFileOrEmbedded(stopwordsPath, "data/stopwords_pt.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to load stopwords: %w", err)
	}
	lemmaData, err := readFileOrEmbedded(lemmasPath, "data/lemmas_pt.tsv")
	if err != nil {
		return nil, fmt.Errorf("failed to load lemma table: %w", err)
	}
	return buildResources(stopData, lemmaData)
}

func readFileOrEmbedded(path, embeddedName string) ([]byte, error) {
	if path == "" {
		return embeddedData.ReadFile(embeddedName)
	}
	return os.ReadFile(path)
}

func buildResources(stopData, lemmaData []byte) (*Resources, error) {
	res := &Resources{
		version:   ResourceVersion,
		stopwords: make(map[string]struct{}),
		lemmas:    make(map[string]string),
	}

	scanner := bufio.NewScanner(bytes.NewReader(stopData))
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		res.stopwords[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan stopwords: %w", err)
	}

	scanner = bufio.NewScanner(bytes.NewReader(lemmaData))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed lemma entry at line %d: %q", lineNo, line)
		}
		res.lemmas[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan lemma table: %w", err)
	}

	return res, nil
}
