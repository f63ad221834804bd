package extract

import (
	"regexp"
	"strings"

	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/model"
	"github.com/vishwaskv362/AgenticInsuranceClaimAssitant/internal/util"
)

type fieldPattern struct {
	field string
	re    *regexp.Regexp
}

var fieldPatterns = []fieldPattern{
	{model.FieldClaimNumber, regexp.MustCompile(`(?i)claim\s*(?:number|#|no\.?|id|ref)\s*[:.]?\s*([A-Z0-9\-/]+)`)},
	{model.FieldPolicyNumber, regexp.MustCompile(`(?i)policy\s*(?:number|#|no\.?)\s*[:.]?\s*([A-Z0-9\-/]+)`)},
	{model.FieldAdmissionDate, regexp.MustCompile(`(?i)(?:admission|admitted)\s*(?:date|on)?\s*[:.]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)},
	{model.FieldDischargeDate, regexp.MustCompile(`(?i)discharge\s*(?:date|on)?\s*[:.]?\s*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)},
	{model.FieldClaimAmount, regexp.MustCompile(`(?i)(?:claim|total)\s*amount\s*[:.]?\s*(?:Rs\.?|₹|INR)?\s*([\d,]+)`)},
}

// Insurers is the gazetteer of insurer names, matched case-insensitively in order.
var Insurers = []string{
	"Star Health", "ICICI Lombard", "HDFC ERGO", "Bajaj Allianz", "Max Bupa",
	"Care Health", "Niva Bupa", "Aditya Birla", "Tata AIG", "SBI General",
	"New India", "United India", "Oriental", "National Insurance",
}

// Hospitals is the gazetteer of hospital chains, matched case-insensitively in order.
var Hospitals = []string{
	"Apollo", "Fortis", "Max", "Medanta", "Narayana", "Manipal", "AIIMS",
	"Kokilaben", "Lilavati", "Hinduja", "Sir Ganga Ram", "BLK", "Artemis",
}

const hospitalNameLimit = 50

var hospitalPatterns = compileHospitalPatterns(Hospitals)

func compileHospitalPatterns(names []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(names))
	for i, name := range names {
		out[i] = regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(name) + `[A-Za-z\s,]+(?:Hospital|Medical|Healthcare)?[^,\n]*)`)
	}
	return out
}

var denialCodePattern = regexp.MustCompile(`(?i)\b(PED-\d+|WP-\d+|EXC-\d+|PA-\d+|DOC-\d+|MN-\d+|NW-\d+|SL-\d+)\b`)

// ExtractPatterns fills claim facts from text using fixed patterns and the
// insurer and hospital gazetteers. Fields with no match stay nil.
func ExtractPatterns(text string) model.ClaimFacts {
	facts := model.NewClaimFacts()

	for _, p := range fieldPatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				facts.Set(p.field, v)
			}
		}
	}

	lower := strings.ToLower(text)
	for _, insurer := range Insurers {
		if strings.Contains(lower, strings.ToLower(insurer)) {
			facts.Set(model.FieldInsurerName, insurer)
			break
		}
	}

	for i, hospital := range Hospitals {
		if !strings.Contains(lower, strings.ToLower(hospital)) {
			continue
		}
		name := hospital
		if m := hospitalPatterns[i].FindStringSubmatch(text); m != nil {
			name = util.Truncate(strings.TrimSpace(m[1]), hospitalNameLimit)
		}
		facts.Set(model.FieldHospitalName, name)
		break
	}

	facts.DenialCodes = ScanDenialCodes(text)
	return facts
}

// ScanDenialCodes returns the denial-code tokens in text, uppercased,
// without repeats, in order of first appearance.
func ScanDenialCodes(text string) []string {
	matches := denialCodePattern.FindAllStringSubmatch(text, -1)
	codes := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		code := strings.ToUpper(m[1])
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}
