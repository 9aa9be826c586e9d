package character

const (
	Male   = "Male"
	Female = "Female"
)

var Ethnicities = []string{
	"english",
	"french",
	"german",
	"russian",
	"spanish",
	"italian",
	"japanese",
	"mandarin-chinese",
	"korean",
	"arabic",
	"hindi",
	"turkish",
	"swahili",
}

var Genders = []string{Male, Female}

var heights = []string{
	"very short",
	"short",
	"average height",
	"tall",
	"very tall",
}

var weights = []string{
	"very thin",
	"thin",
	"average weight",
	"fat",
	"very fat",
}

var faceTypes = []string{
	"round",
	"oval",
	"square",
	"rectangular",
	"diamond",
	"heart",
	"triangle",
	"pear",
}

var degrees = []string{"not very", "a little", "moderately", "often", "very"}

var valueList = []string{
	"acceptance", "adaptability", "authenticity", "authority", "autonomy",
	"awareness", "balance", "beauty", "boldness", "calmness", "citizenship",
	"community", "compassion", "competency", "contribution", "creativity",
	"curiosity", "determination", "discipline", "empathy", "fairness",
	"faith", "family", "fame", "freedom", "friends", "fun", "gratitude",
	"growth", "happiness", "health", "honesty", "humility", "humor",
	"influence", "innovation", "integrity", "justice", "kindness",
	"knowledge", "leadership", "learning", "love", "loyalty", "moderation",
	"openness", "optimism", "patience", "peace", "pleasure", "popularity",
	"purpose", "recognition", "religion", "reputation", "respect",
	"responsibility", "security", "self-respect", "service", "spirituality",
	"stability", "status", "success", "trust", "trustworthiness",
	"understanding", "wealth", "wisdom",
}

// InterestAreas are the RIASEC work interest areas.
var InterestAreas = []string{
	"Realistic",
	"Investigative",
	"Artistic",
	"Social",
	"Enterprising",
	"Conventional",
}

var socialClasses = []string{"lower", "middle", "upper"}

var genericJobs = []string{
	"Accountant", "Actor", "Athlete", "Artist", "Doctor", "Engineer",
	"Lawyer", "Office Worker", "Factory Worker", "Musician", "Politician",
	"Retail Worker", "Salesperson", "Teacher", "Sailor", "Scientist",
	"Soldier", "Unemployed", "Writer",
}

// eraDefaults holds the per-era ethnicity override, name generator family
// and maximum age.
type eraDefaults struct {
	ethnicity string
	nameType  string
	maxAge    int
}

var eras = map[string]eraDefaults{
	"Prehistoric":  {"old-norse", "medieval", 30},
	"Ancient":      {"old-roman", "medieval", 35},
	"Medieval":     {"old-english", "medieval", 40},
	"Renaissance":  {"", "language", 55},
	"Colonial":     {"", "language", 70},
	"Modern":       {"", "language", 85},
	"Contemporary": {"", "language", 100},
	"Future":       {"", "language", 110},
}

type palette struct {
	hair    []string
	eyes    []string
	skin    []string
	greying bool
}

var (
	eastAsian = palette{
		hair: []string{"black", "brown"},
		eyes: []string{"black", "brown"},
		skin: []string{"olive", "light brown", "beige"},
	}
	northernEuropean = palette{
		hair:    []string{"brown", "blonde", "red"},
		eyes:    []string{"brown", "blue", "green", "grey", "hazel"},
		skin:    []string{"ivory", "porcelain", "alabaster", "beige", "light"},
		greying: true,
	}
	southernEuropean = palette{
		hair:    []string{"brown", "black"},
		eyes:    []string{"brown", "blue", "green", "grey", "hazel"},
		skin:    []string{"sienna", "honey", "tan", "olive", "almond", "bronze"},
		greying: true,
	}
	middleEastern = palette{
		hair:    []string{"black", "brown"},
		eyes:    []string{"black", "brown"},
		skin:    []string{"olive", "chestnut", "praline", "honey", "caramel", "almond"},
		greying: true,
	}
	eastAfrican = palette{
		hair:    []string{"black", "brown"},
		eyes:    []string{"black", "brown"},
		skin:    []string{"black", "cacao", "sable", "espresso", "ebony", "mahogany"},
		greying: true,
	}
)

var greyHair = []string{"white", "grey"}

var palettes = map[string]palette{
	"chinese":          eastAsian,
	"mandarin-chinese": eastAsian,
	"japanese":         eastAsian,
	"korean":           eastAsian,
	"english":          northernEuropean,
	"german":           northernEuropean,
	"french":           northernEuropean,
	"russian":          northernEuropean,
	"old-english":      northernEuropean,
	"old-norse":        northernEuropean,
	"spanish":          southernEuropean,
	"italian":          southernEuropean,
	"old-roman":        southernEuropean,
	"arabic":           middleEastern,
	"hindi":            middleEastern,
	"turkish":          middleEastern,
	"swahili":          eastAfrican,
}

// familyNameFirst lists ethnicities whose names are written family name
// first.
var familyNameFirst = map[string]bool{
	"chinese":          true,
	"mandarin-chinese": true,
	"japanese":         true,
	"korean":           true,
}
