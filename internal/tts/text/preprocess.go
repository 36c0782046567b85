// Package text provides text normalization for speech synthesis and the
// preview derivation used when naming generated audio files.
package text

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Number conversion bounds.
const (
	numberBaseTen      = 10
	numberBaseTwenty   = 20
	numberBaseHundred  = 100
	numberBaseThousand = 1000
	maxNumberForWords  = 999999
)

// PreviewMaxLength caps the derived text preview embedded in output filenames.
const PreviewMaxLength = 50

const whitespaceRegexPattern = `\s+`

const numberRegexPattern = `\d+`

// Preprocessor normalizes raw input text before it reaches a synthesis engine.
type Preprocessor struct {
	whitespacePattern    *regexp.Regexp
	numberPattern        *regexp.Regexp
	abbreviationReplacer *strings.Replacer
	punctuationReplacer  *strings.Replacer
}

// NewPreprocessor creates a preprocessor with compiled patterns and replacers.
func NewPreprocessor() *Preprocessor {
	abbreviations := []string{
		"Mr.", "Mister",
		"Mrs.", "Misses",
		"Ms.", "Miss",
		"Dr.", "Doctor",
		"St.", "Saint",
		"Co.", "Company",
		"Ltd.", "Limited",
		"Corp.", "Corporation",
		"Inc.", "Incorporated",
	}

	punctuation := []string{
		"—", "-",
		"–", "-",
		"‒", "-",
		"…", "...",
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
	}

	return &Preprocessor{
		whitespacePattern:    regexp.MustCompile(whitespaceRegexPattern),
		numberPattern:        regexp.MustCompile(numberRegexPattern),
		abbreviationReplacer: strings.NewReplacer(abbreviations...),
		punctuationReplacer:  strings.NewReplacer(punctuation...),
	}
}

// Normalize prepares text for synthesis: abbreviations are expanded, integers
// become words, typographic punctuation is flattened, whitespace is collapsed,
// and the result ends with sentence punctuation.
func (p *Preprocessor) Normalize(input string) string {
	if input == "" {
		return input
	}

	normalized := p.abbreviationReplacer.Replace(input)
	normalized = p.expandNumbers(normalized)
	normalized = p.punctuationReplacer.Replace(normalized)
	normalized = p.whitespacePattern.ReplaceAllString(normalized, " ")
	normalized = strings.TrimSpace(normalized)

	return ensureSentenceEnding(normalized)
}

// expandNumbers converts every integer in the text to its word form.
func (p *Preprocessor) expandNumbers(input string) string {
	return p.numberPattern.ReplaceAllStringFunc(input, func(match string) string {
		num, err := strconv.Atoi(match)
		if err != nil {
			return match
		}

		return integerToWords(num)
	})
}

// ensureSentenceEnding appends a period when the text does not already end
// with sentence punctuation.
func ensureSentenceEnding(input string) string {
	if input == "" {
		return input
	}

	lastRune, _ := utf8.DecodeLastRuneInString(input)
	switch lastRune {
	case '.', '!', '?':
		return input
	default:
		if unicode.IsPunct(lastRune) {
			return input
		}

		return input + "."
	}
}

// Preview derives the short text fragment embedded in a generated filename.
// Newlines become spaces, the fragment is truncated to PreviewMaxLength runes,
// the id/preview separator "__" is collapsed, and runes that are hostile to
// filesystems are replaced with underscores.
func Preview(input string) string {
	flattened := strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(input)

	runes := []rune(flattened)
	if len(runes) > PreviewMaxLength {
		flattened = string(runes[:PreviewMaxLength])
	}

	flattened = strings.TrimSpace(flattened)
	flattened = strings.ReplaceAll(flattened, "__", "_")

	return sanitizeForFilename(flattened)
}

// sanitizeForFilename replaces characters that are invalid in most filesystems.
func sanitizeForFilename(name string) string {
	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"/", "_",
		"\\", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)

	return replacer.Replace(name)
}

// integerToWords converts an integer into its English word representation.
// Numbers outside [0, maxNumberForWords] are returned as digits.
func integerToWords(number int) string {
	if number < 0 || number > maxNumberForWords {
		return strconv.Itoa(number)
	}

	if number == 0 {
		return "zero"
	}

	var parts []string

	thousands := number / numberBaseThousand
	if thousands > 0 {
		parts = append(parts, underThousandToWords(thousands)+" thousand")
	}

	remainder := number % numberBaseThousand
	if remainder > 0 {
		parts = append(parts, underThousandToWords(remainder))
	}

	return strings.Join(parts, " ")
}

func underThousandToWords(number int) string {
	hundreds := number / numberBaseHundred
	remainder := number % numberBaseHundred

	var parts []string

	if hundreds > 0 {
		parts = append(parts, onesWord(hundreds)+" hundred")
	}

	if remainder > 0 {
		parts = append(parts, underHundredToWords(remainder))
	}

	return strings.Join(parts, " ")
}

func underHundredToWords(number int) string {
	if number < numberBaseTen {
		return onesWord(number)
	}

	if number < numberBaseTwenty {
		return teensWord(number)
	}

	result := tensWord(number / numberBaseTen)
	if number%numberBaseTen > 0 {
		result += " " + onesWord(number%numberBaseTen)
	}

	return result
}

func onesWord(digit int) string {
	words := []string{
		"", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine",
	}

	return words[digit]
}

func teensWord(number int) string {
	words := []string{
		"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}

	return words[number-numberBaseTen]
}

func tensWord(tens int) string {
	words := []string{
		"", "", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety",
	}

	return words[tens]
}
