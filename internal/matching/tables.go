package matching

// Lookup tables keyed by catalog option values. These are calibration data:
// changing any entry shifts every program's relative ranking.

// domains maps the field-of-interest level 1 choice to a program domain.
var domains = map[string]string{
	"Innovation & Technology":         "Future Builders",
	"Leadership & Influence":          "Power, Policy & Influence",
	"Arts & Creative Expression":      "Culture & Creativity",
	"Social Impact & Human Services":  "Human Insight & Impact",
	"Exploratory & Interdisciplinary": "Explorative Paths",
}

// keywords maps the level 2 interest to search terms matched against program
// text. An interest with no keywords never boosts.
var keywords = map[string][]string{
	// Innovation & Technology
	"entrepreneurship": {"entrepreneurship", "entrepreneur", "startup", "innovation", "venture"},
	"technology":       {"computer science", "technology", "tech", "software", "programming"},
	"engineering":      {"engineering", "biomedical", "technical", "design", "development"},
	"sustainability":   {"environmental", "sustainability", "sustainable", "climate", "green"},
	"data_science":     {"data science", "analytics", "data", "statistics", "research"},

	// Leadership & Influence
	"business_leadership":     {"business", "management", "leadership", "administration", "executive"},
	"government":              {"government", "political", "policy", "public", "administration"},
	"communications":          {"communications", "media", "journalism", "public relations", "marketing"},
	"international_relations": {"international", "relations", "diplomacy", "global", "foreign"},
	"policy":                  {"policy", "governance", "public administration", "regulation", "law"},

	// Arts & Creative Expression
	"music":                  {"music", "musical", "performance", "composition", "musicology"},
	"film":                   {"film", "cinema", "documentary", "media", "production"},
	"liberal_arts":           {"liberal arts", "humanities", "literature", "philosophy", "history"},
	"creative_writing":       {"writing", "literature", "english", "language", "linguistics"},
	"interdisciplinary_arts": {"interdisciplinary", "arts", "creative", "cultural", "design"},

	// Social Impact & Human Services
	"social_work":          {"social", "community", "development", "service", "welfare"},
	"emergency_management": {"emergency", "disaster", "management", "crisis", "response"},
	"conflict_resolution":  {"conflict", "resolution", "mediation", "peace", "negotiation"},
	"public_health":        {"health", "public health", "medical", "healthcare", "wellness"},
	"education":            {"education", "teaching", "learning", "academic", "pedagogy"},

	// Exploratory & Interdisciplinary
	"undecided":         {},
	"dual_degree":       {"dual", "double", "combined", "joint", "interdisciplinary"},
	"interdisciplinary": {"interdisciplinary", "multidisciplinary", "cross-disciplinary"},
	"research":          {"research", "academic", "scholarly", "investigation", "study"},
	"global_studies":    {"global", "international", "cultural", "world", "comparative"},
}

// confidenceMultipliers scale the keyword boost by stated certainty.
var confidenceMultipliers = map[int]float64{1: 0.2, 2: 0.4, 3: 0.6, 4: 0.8, 5: 1.0}

const defaultConfidenceMultiplier = 0.6

// budgetCeilings maps the budget bracket to its upper bound in USD per year.
var budgetCeilings = map[string]float64{
	"under_5000":  5000,
	"5000_10000":  10000,
	"10000_15000": 15000,
	"15000_20000": 20000,
	"20000_30000": 30000,
	"over_30000":  99999,
}

// gpaMidpoints maps the GPA bracket to its midpoint. "dont_know" is absent
// and reads as unknown.
var gpaMidpoints = map[string]float64{
	"below_2_5": 2.25,
	"2_5_2_9":   2.7,
	"3_0_3_2":   3.1,
	"3_3_3_5":   3.4,
	"3_6_3_8":   3.7,
	"3_9_4_0":   3.95,
}

// Non-essential prerequisite flags.
const (
	FlagScholarship   = "scholarship_required"
	FlagHealthSupport = "health_support"
	FlagMentalHealth  = "mental_health_support"
	FlagAccessibility = "accessibility_accommodations"
	FlagHousing       = "housing_required"
	FlagDietary       = "dietary_requirements"
)

var flagNotes = map[string]string{
	FlagScholarship:   "you will need scholarship or financial aid",
	FlagHealthSupport: "confirm access to ongoing health care",
	FlagMentalHealth:  "check the mental health support services on campus",
	FlagAccessibility: "confirm campus and housing accessibility accommodations",
	FlagHousing:       "arrange student housing early",
	FlagDietary:       "check the dietary options available",
}
