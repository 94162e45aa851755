package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Component weights, fixed. They sum to 1.0.
const (
	WeightSeniority        = 0.25
	WeightSkills           = 0.35
	WeightIndustry         = 0.20
	WeightLocationLanguage = 0.20
)

var seniorityLevels = map[string]float64{
	"intern":     1,
	"junior":     2,
	"mid":        3,
	"mid_senior": 3.5,
	"senior":     4,
	"lead":       5,
	"principal":  5,
	"director":   6,
	"vp":         7,
	"c_level":    8,
}

var industryKeywords = map[string][]string{
	"mobility":      {"mobility", "transport", "uber", "lyft", "ride", "taxi", "delivery", "logistics"},
	"ev_charging":   {"ev", "electric", "charging", "vehicle", "tesla", "battery"},
	"consumer_apps": {"consumer", "mobile", "app", "ios", "android", "b2c"},
	"saas":          {"saas", "software", "b2b", "enterprise", "platform"},
	"fintech":       {"fintech", "finance", "payment", "banking", "crypto"},
	"ecommerce":     {"ecommerce", "retail", "marketplace", "shopping"},
}

var techKeywords = []string{"tech", "software", "saas", "product", "startup", "digital"}

var latamCountries = []string{"mexico", "colombia", "argentina", "chile", "brazil", "peru"}

var englishCountries = []string{"usa", "united states", "uk", "united kingdom", "canada", "australia"}

type Requirements struct {
	Seniority          string
	MustHaveSkills     []string
	NiceToHaveSkills   []string
	Industries         []string
	Languages          []string
	LocationPreference []string
}

type Posting struct {
	CompanyName  string
	Title        string
	Level        string
	RemoteOK     bool
	Description  string
	Requirements Requirements
}

type Profile struct {
	FullName       string
	CurrentTitle   string
	CurrentCompany string
	Industry       string
	Seniority      string
	Country        string
}

type HistoryEntry struct {
	CompanyName string
	Title       string
	Start       *time.Time
	End         *time.Time
	Location    string
	Description string
}

type Components struct {
	Seniority        float64
	Skills           float64
	Industry         float64
	LocationLanguage float64
}

type Result struct {
	Score      float64
	Components Components
	Summary    string
	StrongFit  []string
	Gaps       []string
}

// Compute is deterministic: the same inputs always produce the same score.
func Compute(posting Posting, profile Profile, history []HistoryEntry) Result {
	components := Components{
		Seniority:        seniorityScore(posting, profile, history),
		Skills:           skillsScore(posting, profile, history),
		Industry:         industryScore(posting, profile, history),
		LocationLanguage: locationLanguageScore(posting, profile),
	}

	total := components.Seniority*WeightSeniority +
		components.Skills*WeightSkills +
		components.Industry*WeightIndustry +
		components.LocationLanguage*WeightLocationLanguage

	res := Result{
		Score:      math.Round(total*100*100) / 100,
		Components: components,
	}
	res.Summary, res.StrongFit, res.Gaps = describe(posting, profile, history, components, total)
	return res
}

func seniorityScore(posting Posting, profile Profile, history []HistoryEntry) float64 {
	postingLevel := normalize(posting.Level)
	if postingLevel == "" {
		postingLevel = normalize(posting.Requirements.Seniority)
	}
	profileLevel := normalize(profile.Seniority)

	if postingLevel != "" && profileLevel != "" && postingLevel == profileLevel {
		return 1.0
	}

	if postingLevel != "" && profileLevel != "" {
		diff := math.Abs(levelOf(postingLevel) - levelOf(profileLevel))
		switch diff {
		case 0:
			return 1.0
		case 0.5:
			return 0.8
		case 1:
			return 0.6
		case 2:
			return 0.4
		}
		return 0.2
	}

	// Infer from historic titles when the profile carries no explicit level.
	if postingLevel != "" && profileLevel == "" && len(history) > 0 {
		titles := make([]string, 0, len(history))
		for _, h := range history {
			titles = append(titles, normalize(h.Title))
		}
		joined := strings.Join(titles, " ")

		hasSenior := strings.Contains(joined, "senior") || strings.Contains(joined, "lead") || strings.Contains(joined, "principal")
		hasMid := strings.Contains(joined, "mid")
		hasJunior := strings.Contains(joined, "junior") || strings.Contains(joined, "intern")

		switch {
		case strings.Contains(postingLevel, "senior") && hasSenior:
			return 0.8
		case strings.Contains(postingLevel, "senior") && hasMid:
			return 0.5
		case strings.Contains(postingLevel, "mid") && hasMid:
			return 0.8
		case strings.Contains(postingLevel, "junior") && hasJunior:
			return 0.8
		}

		// Rough tenure estimate: two years per entry.
		years := len(history) * 2
		if strings.Contains(postingLevel, "senior") && years >= 5 {
			return 0.7
		}
		if strings.Contains(postingLevel, "mid") && years >= 2 {
			return 0.7
		}
	}

	return 0.5
}

func skillsScore(posting Posting, profile Profile, history []HistoryEntry) float64 {
	must := posting.Requirements.MustHaveSkills
	nice := posting.Requirements.NiceToHaveSkills
	if len(must) == 0 && len(nice) == 0 {
		return 0.5
	}

	corpus := profileCorpus(profile, history)

	mustMatches := 0
	for _, skill := range must {
		if containsKeyword(corpus, skill) {
			mustMatches++
		}
	}
	niceMatches := 0
	for _, skill := range nice {
		if containsKeyword(corpus, skill) {
			niceMatches++
		}
	}

	mustScore := 0.0
	if len(must) > 0 {
		mustScore = float64(mustMatches) / float64(len(must))
	}
	niceScore := 0.0
	if len(nice) > 0 {
		niceScore = float64(niceMatches) / float64(len(nice))
	}

	base := mustScore*0.7 + niceScore*0.3

	// Missing every non-negotiable dominates the blend.
	if len(must) > 0 && mustMatches == 0 {
		return base * 0.3
	}

	return math.Min(1.0, base)
}

func industryScore(posting Posting, profile Profile, history []HistoryEntry) float64 {
	industries := posting.Requirements.Industries
	if len(industries) == 0 {
		return 0.5
	}

	parts := []string{normalize(profile.Industry)}
	for _, h := range history {
		parts = append(parts, normalize(h.CompanyName), normalize(h.Title), normalize(h.Description))
	}
	corpus := strings.Join(parts, " ")

	matched := 0
	for _, industry := range industries {
		keywords, ok := industryKeywords[normalize(industry)]
		if !ok {
			keywords = []string{industry}
		}
		for _, kw := range keywords {
			if containsKeyword(corpus, kw) {
				matched++
				break
			}
		}
	}

	if matched == len(industries) {
		return 1.0
	}
	if matched > 0 {
		return 0.6 + float64(matched)/float64(len(industries))*0.3
	}
	for _, kw := range techKeywords {
		if containsKeyword(corpus, kw) {
			return 0.4
		}
	}
	return 0.2
}

func locationLanguageScore(posting Posting, profile Profile) float64 {
	prefs := posting.Requirements.LocationPreference
	languages := posting.Requirements.Languages
	country := normalize(profile.Country)

	locationScore := 0.5
	switch {
	case len(prefs) > 0 && country != "":
		matched := false
		for _, pref := range prefs {
			p := normalize(pref)
			if p == "" {
				continue
			}
			if strings.Contains(country, p) || strings.Contains(p, country) {
				matched = true
				break
			}
			if (strings.Contains(p, "latam") || strings.Contains(p, "latin")) && containsAny(country, latamCountries) {
				matched = true
				break
			}
		}
		if matched {
			locationScore = 1.0
		} else if posting.RemoteOK {
			locationScore = 0.6
		}
	case posting.RemoteOK:
		locationScore = 1.0
	}

	languageScore := 1.0
	if len(languages) > 0 {
		languageScore = 0.5

		needsSpanish := false
		needsEnglish := false
		for _, lang := range languages {
			l := normalize(lang)
			if strings.Contains(l, "spanish") {
				needsSpanish = true
			}
			if strings.Contains(l, "english") {
				needsEnglish = true
			}
		}

		// Country-based language heuristic: profiles carry no language field.
		if containsAny(country, latamCountries) {
			if needsSpanish {
				languageScore += 0.3
			}
			if needsEnglish {
				languageScore += 0.2
			}
		}
		if len(languages) == 1 && needsEnglish && containsAny(country, englishCountries) {
			languageScore = 1.0
		}
		languageScore = math.Min(1.0, languageScore)
	}

	return (locationScore + languageScore) / 2
}

func describe(posting Posting, profile Profile, history []HistoryEntry, components Components, total float64) (string, []string, []string) {
	strongFit := make([]string, 0, 4)
	gaps := make([]string, 0, 3)

	titleCorpus := titleCorpus(profile, history)

	if components.Seniority >= 0.7 {
		level := posting.Level
		if level == "" {
			level = "role"
		}
		who := profile.Seniority
		if who == "" {
			who = "experienced"
		}
		strongFit = append(strongFit, fmt.Sprintf("Strong seniority match: %s candidate for %s position.", who, level))
	}

	if components.Skills >= 0.7 {
		matched := filterSkills(posting.Requirements.MustHaveSkills, titleCorpus, true)
		if len(matched) > 0 {
			strongFit = append(strongFit, fmt.Sprintf("Strong skills match: %s experience found.", strings.Join(matched, ", ")))
		}
	}

	if components.Industry >= 0.7 {
		industry := profile.Industry
		if industry == "" {
			industry = "relevant industry"
		}
		strongFit = append(strongFit, fmt.Sprintf("Strong industry fit: %s experience aligns with requirements.", industry))
	}

	if components.LocationLanguage >= 0.8 {
		where := profile.Country
		if where == "" {
			where = "location"
		}
		strongFit = append(strongFit, fmt.Sprintf("Location and language alignment: %s matches preferences.", where))
	}

	if components.Skills < 0.5 {
		missing := filterSkills(posting.Requirements.MustHaveSkills, titleCorpus, false)
		if len(missing) > 0 {
			gaps = append(gaps, fmt.Sprintf("Missing key skills: %s.", strings.Join(missing, ", ")))
		}
	}
	if components.Industry < 0.5 && len(posting.Requirements.Industries) > 0 {
		gaps = append(gaps, fmt.Sprintf("Limited experience in required industries: %s.", strings.Join(posting.Requirements.Industries, ", ")))
	}
	if components.Seniority < 0.5 {
		level := posting.Level
		if level == "" {
			level = "required"
		}
		gaps = append(gaps, fmt.Sprintf("Seniority mismatch: candidate level may not align with %s position.", level))
	}

	var summary string
	switch {
	case total >= 0.7:
		summary = fmt.Sprintf("Strong match: %s has relevant experience and aligns well with %s at %s.", profile.FullName, posting.Title, posting.CompanyName)
	case total >= 0.5:
		summary = fmt.Sprintf("Moderate match: %s has some relevant experience but may have gaps in specific requirements.", profile.FullName)
	default:
		summary = fmt.Sprintf("Weak match: %s has limited alignment with the requirements.", profile.FullName)
	}

	return summary, strongFit, gaps
}

func filterSkills(skills []string, corpus string, present bool) []string {
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		if containsKeyword(corpus, skill) == present {
			out = append(out, skill)
		}
	}
	sort.Strings(out)
	return out
}

func profileCorpus(profile Profile, history []HistoryEntry) string {
	parts := []string{normalize(profile.CurrentTitle), normalize(profile.Industry)}
	for _, h := range history {
		parts = append(parts, normalize(h.Title))
	}
	for _, h := range history {
		parts = append(parts, normalize(h.Description))
	}
	for _, h := range history {
		parts = append(parts, normalize(h.CompanyName))
	}
	return strings.Join(parts, " ")
}

func titleCorpus(profile Profile, history []HistoryEntry) string {
	parts := []string{normalize(profile.CurrentTitle)}
	for _, h := range history {
		parts = append(parts, normalize(h.Title))
	}
	return strings.Join(parts, " ")
}

func levelOf(label string) float64 {
	if lvl, ok := seniorityLevels[label]; ok {
		return lvl
	}
	return 3
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsKeyword(corpus, keyword string) bool {
	kw := normalize(keyword)
	if kw == "" {
		return false
	}
	return strings.Contains(corpus, kw)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if s != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
