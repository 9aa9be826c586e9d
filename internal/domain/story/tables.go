package story

var Audiences = []string{
	"boys",
	"girls",
	"children",
	"young men",
	"young girls",
	"teenagers",
	"men",
	"women",
	"families",
}

var Genres = []string{
	"action",
	"adventure",
	"comedy",
	"crime",
	"drama",
	"fantasy",
	"historical",
	"horror",
	"mystery",
	"paranormal",
	"romance",
	"science fiction",
	"thriller",
	"western",
}

// Concepts are the thematic concepts a story grapples with.
var Concepts = []string{
	// experiences
	"aging",
	"childhood",
	"coming of age",
	"disillusionment",
	"friendship",
	"growth",
	"healing",
	"isolation",
	"loss",
	"loss of innocence",
	"overcoming adversity",
	"parenthood",
	"redemption",
	"revenge",
	"self-discovery",
	"survival",
	"tragedy",
	// feelings
	"apathy",
	"compassion",
	"despair",
	"fear",
	"grief",
	"jealousy",
	"joy",
	"loneliness",
	"love",
	"regret",
	// gender and sexuality
	"androgyny",
	"femininity",
	"gender identity",
	"masculinity",
	"sexuality",
	// human perception
	"dreams",
	"identity",
	"memory",
	"perception vs. reality",
	"subjectivity",
	// mental health and neurodiversity
	"autism",
	"bipolarity",
	"depression",
	"obsessive compulsive disorder",
	"suicide",
	// natural forces
	"death",
	"fate",
	"nature",
	"passage of time",
	// politics and economics
	"capitalism",
	"communism",
	"conservation",
	"democracy",
	"fascism",
	"freedom",
	"justice",
	"nationalism",
	"peace",
	"propaganda",
	"radicalism",
	"socialism",
	"war",
	// religion and philosophy
	"atheism",
	"determinism",
	"ethics",
	"faith",
	"free will",
	"good vs. evil",
	"skepticism",
	"metaphysics",
	"nature vs. nurture",
	"pacifism",
	"religion",
	"soul / consciousness",
	// social issues
	"abuse of power",
	"homophobia",
	"immigration",
	"inequality",
	"oppression",
	"poverty",
	"progress & regress",
	"privilege",
	"racism",
	"rights of the oppressed",
	"sexism",
	"transphobia",
	"working class struggles",
	// society and culture
	"conformity",
	"familial obligations",
	"honor",
	"individualism",
	"responsibility",
	"tradition",
	// technology and science
	"artificial intelligence",
	"augmented reality",
	"genetic engineering",
	"human integration with technology",
	"information privacy",
	"weapons of mass destruction",
	// virtues and vices
	"ambition",
	"corruption",
	"courage",
	"forgiveness",
	"mercy",
	"power",
	"pride",
}

// Beat is one named plot element of a narrative structure. Each beat
// becomes an act.
type Beat struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Structure is a narrative structure: its beats in story order.
type Structure struct {
	Name  string
	Beats []Beat
}

const (
	FiveAct      = "Five-Act"
	Freytag      = "Freytag's Pyramid"
	HerosJourney = "Hero's Journey"
	ThreeAct     = "Three-Act"
	StoryCircle  = "Dan Harmon Story Circle"
	Fichtean     = "Fichtean Curve"
	SaveTheCat   = "Save the Cat"
)

var Structures = []Structure{
	{FiveAct, []Beat{
		{"Exposition", "The characters and setting are introduced as well as an inciting incident."},
		{"Rising Action", "The events set up the climax."},
		{"Climax", "The story turns and the fullest energy of the protagonist is portrayed."},
		{"Falling Action", "Events following the climax."},
		{"Resolution", "The story ends and the conflict is resolved."},
	}},
	{Freytag, []Beat{
		{"Introduction", "The status quo is established; an inciting incident occurs."},
		{"Rising Action", "The protagonist actively pursues their goal. The stakes heighten."},
		{"Climax", "There is a point of no return, from which the protagonist can no longer go back to the status quo."},
		{"Fall", "In the aftermath of the climax, tension builds, and the story heads inevitably towards catastrophe."},
		{"Catastrophe", "The protagonist is brought to their lowest point. Their greatest fears have come true."},
	}},
	{HerosJourney, []Beat{
		{"The Ordinary World", "The protagonist is introduced. The reader is given a bit of personal history, setting, and cultural context. Something in the hero’s life makes them feel they are being pulled in different directions and causing stress."},
		{"The Call to Adventure", "Something shakes up the situation, and the hero feels called to make a change, which usually involves leaving home."},
		{"Refusal of the Call", "The protagonist fears the unknown and considers turning away from the adventure.  Or another character tries to dissuade the hero from proceeding."},
		{"Meeting with the Mentor", "The protagonist comes across someone (often a stranger, elder, or spirit) who gives them training, equipment, or advice that will help on the journey."},
		{"Crossing the First Threshold", "The protagonist commits to leaving the World where they started and enters a new region or condition with unfamiliar rules and values."},
		{"Tests, Allies, and Enemies", "The protagonist is tested and sorts out allegiances in the Unfamiliar or Special World."},
		{"Approach to the Inmost Cave", "The protagonist and their new-found allies prepare for the major challenge in the Special World."},
		{"The Ordeal", "The protagonist arrives in a central space in the Unfamiliar World and faces death or their greatest fear. The protagonist emerges from this moment of reckoning changed in some way."},
		{"Reward", "The protagonist takes possession of the treasure they have won in the ordeal. There may be celebration, but there is also danger of losing the treasure again."},
		{"The Road Back", "The protagonist must complete the adventure and leave the Special World to bring their treasure back home. They realize that achieving their goal is not the final hurdle."},
		{"Resurrection", "The protagonist is severely tested once more as they near home in the climax.  The hero is changed by a last sacrifice, another moment of death and rebirth which prepares them to be a leader upon their return."},
		{"Return with the Elixir", "The protagonist returns home, bearing the treasure. The treasure has the power to transform the world, as the hero has been transformed. The hero is hailed as a leader by their kinsmen or community and so begins a new (and better) life and world."},
	}},
	{ThreeAct, []Beat{
		{"Exposition", "The status quo or 'ordinary world' is established."},
		{"Inciting Incident", "An event happens that sets the story in motion."},
		{"Plot Point One", "The protagonist decides to tackle the challenge head-on."},
		{"Rising Action", "The protagonist attempts to resolve the problem initiated by the first turning point, only to find themselves in ever worsening situations."},
		{"Midpoint", "The protagonist reaches the lowest point of the story. An event that upends the protagonist’s mission."},
		{"Plot Point Two", "The protagonist must not only learn new skills but arrive at a higher sense of awareness of who they are and what they are capable of, in order to deal with their predicament, which in turn changes who they are."},
		{"Pre Climax", "The protagonist must pull themself together and choose between decisive action and failure."},
		{"Climax", "The protagonist must make a choice that will change their life forever."},
		{"Denouement", "All loose ends are tied up, the consequences of the climax are revealed, and a new status quo is established."},
	}},
	{StoryCircle, []Beat{
		{"Comfort Zone", "The status quo is established."},
		{"The Want", "The protagonist wants something."},
		{"Unfamiliar Situation", "The protagonist must do something new in their pursuit of the thing they want."},
		{"Adapt", "Faced with some challenges, the protagonist struggles then begins to succeed."},
		{"Find", "The protagonist gets what they want."},
		{"Take", "The protagonist pays a heavy price for what they wanted."},
		{"Return", "The protagonist returns to their familiar situation armed with a new truth."},
		{"Change", "The protagonist has changed."},
	}},
	{Fichtean, []Beat{
		{"Crisis 1", "The protagonist is introduced in the middle of a crisis."},
		{"Crisis 2", "Some flaw in the protagonist's character leads them into another crisis"},
		{"Crisis 3", "The protagonist is faced with a third crisis, which forces them to face their character flaw."},
		{"Crisis 4", "The protagonist is faced with a fourth crisis."},
		{"Climax", "The protagonist must learn from their previous mistakes to overcome the final crisis or be completely defeated by it."},
		{"Resolution", "The protagonist either learns from their mistakes and overcomes their flaw or continues with something else fundamentally changed."},
	}},
	{SaveTheCat, []Beat{
		{"Opening Image", "A visual representation of the story's theme is described."},
		{"Set-up", "The protagonist is introduced and their goal is stated."},
		{"Theme Stated", "As part of the setup, the theme is hinted at. There is a truth that the protagonist will discover by the end."},
		{"Catalyst", "The protagonist is given a reason to act."},
		{"Debate", "The protagonist debates whether or not to act."},
		{"Break into Two", "The protagonist decides to act."},
		{"B Story", "The protagonist's goal is complicated by a secondary goal. This is a subplot that should highlight the theme."},
		{"Fun and Games", "The protagonist tries several times to achieve their goal based on the genre."},
		{"Midpoint", "A plot twist occurs that ups the stakes and makes the hero’s goal harder to achieve — or makes them focus on a new, more important goal."},
		{"Bad Guys Close In", "The protagonist's goal is threatened."},
		{"All is Lost", "The protagonist is defeated as they lose everything they've gained so far, and things are looking bleak."},
		{"Dark Night of the Soul", "Having just lost everything, the protagonist is at their lowest point before discovering some 'new information' that reveals exactly what they need to do to take another crack at success. (This new information is often delivered through the B-Story)."},
		{"Break into Three", "Armed with this new information, the protagonist decides to act once more."},
		{"Finale", "The protagonist confronts the antagonist or whatever the source of the primary conflict is. The truth that eluded them at the start of the story is now clear, allowing them to resolve their story and achieve their goal."},
		{"Final Image", "The final image of the story's theme is visually represented. It is the final moment or scene that crystallizes how the character has changed. It’s a reflection, in some way, of the opening image."},
	}},
}

// StructureNames returns the narrative structure names in table order.
func StructureNames() []string {
	names := make([]string, 0, len(Structures))
	for _, s := range Structures {
		names = append(names, s.Name)
	}
	return names
}

// FindStructure returns the structure called name.
func FindStructure(name string) (Structure, bool) {
	for _, s := range Structures {
		if s.Name == name {
			return s, true
		}
	}
	return Structure{}, false
}
