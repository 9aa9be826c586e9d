package location

// Area is a named region with the locales a scene can be set in.
type Area struct {
	Name    string
	Locales []string
}

var jungleLocales = []string{
	"village", "river", "riverbank", "canopy", "undergrowth", "clearing",
	"cave", "temple", "bridge", "hut",
}

var mountainsLocales = []string{
	"mountain", "pass", "village", "hut", "peak", "lake", "riverbank",
	"stream", "waterfall", "cave", "canyon", "cliff", "valley", "glacier",
	"plateau", "ridge", "summit",
}

var desertLocales = []string{
	"oasis", "village", "camp", "dune", "cave", "canyon", "cliff", "arch",
	"cactus field",
}

var forestLocales = []string{
	"woods", "stream", "riverbank", "lake", "lagoon", "swamp", "marsh",
	"meadow", "canopy", "thicket", "clearing", "gully", "grove", "hollow",
	"hut", "village",
}

var arcticLocales = []string{
	"village", "camp", "iceberg", "ice shelf", "ice cap", "glacier",
	"ice cave", "ice tunnel", "tundra", "snowdrift", "snowfield", "snowbank",
	"snowy mountain",
}

var oceanLocales = []string{
	"island", "beach", "open ocean", "reef", "inlet", "bay", "cove", "cape",
	"fjord", "gulf", "coast", "channel",
}

var colonialOceanLocales = []string{
	"ship", "shipwreck", "pirate ship", "port", "dock", "harbor", "pier",
	"wharf", "quay", "barge", "brig", "frigate", "cabin", "deck",
	"cargo hold",
}

var modernOceanLocales = []string{
	"underwater", "oceanside hotel", "ocean floor", "submarine",
	"aircraft carrier", "sailboat", "yacht", "cruise ship", "fishing boat",
	"oil rig", "oil tanker", "tugboat", "lounge", "dining room", "ballroom",
	"casino", "bridge", "engine room", "kitchen", "bathroom", "stateroom",
	"corridor", "stairwell",
}

var undergroundLocales = []string{
	"cave", "tunnel", "river", "lake", "vault", "tomb", "cavern",
}

var medievalLocales = []string{
	"castle", "keep", "tower", "palace", "village", "quarry", "field",
}

var modernRemoteLocales = []string{
	"airstrip", "road", "facility", "bunker", "cabin", "camp", "mine",
	"tunnel", "reservation", "ghost town", "oil field", "ruins",
}

var ruralLocales = []string{
	"farm", "barn", "stable", "military camp", "abandoned military camp",
	"abandoned farm", "abandoned house", "park", "forest", "field",
	"pasture", "butte", "pond", "lake", "grove", "garden", "backyard",
	"front yard", "porch", "patio", "deck", "school", "market",
	"town square", "town hall", "lodge", "ranch", "quarry", "greenhouse",
	"observatory",
}

var suburbanLocales = []string{
	"house", "mansion", "apartment", "bedroom", "kitchen", "bathroom",
	"living room", "dining room", "car wash", "car repair shop", "rest stop",
	"highway", "pet store", "motel", "mall", "shopping center", "church",
	"school", "university", "library", "museum", "theater", "cinema",
	"restroom", "outdoor swimming pool", "parking lot", "parking garage",
	"park", "playground", "garden", "backyard", "front yard", "retail store",
	"grocery store", "pharmacy", "main street", "ice skating rink",
	"toy store", "book store", "high school", "middle school",
	"elementary school", "courthouse", "construction site", "bank",
	"art studio", "gym", "pool", "theatre", "office", "conference room",
	"break room", "treehouse",
}

var urbanLocales = []string{
	"bar", "restaurant", "cafe", "office", "building", "apartment",
	"penthouse", "hotel", "factory", "warehouse", "pier", "store",
	"abandoned factory", "fast food place", "laundromat", "daycare center",
	"church", "mosque", "laboratory", "hospital", "school", "university",
	"library", "museum", "theater", "cinema", "concert hall", "restroom",
	"bedroom", "kitchen", "bathroom", "living room", "dining room", "shop",
	"parking lot", "parking garage", "pharmacy", "high-rise",
	"company headquarters", "courthouse", "construction site", "bank",
	"casino", "foreign embassy", "government building", "art studio",
	"art gallery", "stadium", "arena", "gym", "pool", "diner", "movie set",
	"power plant", "train yard", "conference room", "break room",
}

var skyLocales = []string{
	"balloon", "blimp", "airship", "airplane", "helicopter", "cabin",
	"hangar", "airport", "airfield", "airbase",
}

var spaceLocales = []string{
	"station", "docking bay", "spacecraft", "bar", "cabin", "office",
	"bridge", "cargo hold", "laboratory", "ship", "colony", "base", "port",
	"moon", "alien planet", "underground", "asteroid",
}

// Area groupings, accumulated by era in AvailableAreas.
var (
	primitiveAreas = []Area{
		{"mountainous", mountainsLocales},
		{"ocean", oceanLocales},
		{"desert", desertLocales},
		{"forest", forestLocales},
		{"jungle", jungleLocales},
		{"arctic", arcticLocales},
	}
	medievalAreas = []Area{
		{"underground", undergroundLocales},
		{"medieval", medievalLocales},
	}
	colonialAreas = []Area{
		{"colonial ocean", colonialOceanLocales},
		{"rural", ruralLocales},
	}
	modernAreas = []Area{
		{"modern ocean", modernOceanLocales},
		{"modern remote", modernRemoteLocales},
		{"urban", urbanLocales},
		{"suburban", suburbanLocales},
		{"sky", skyLocales},
	}
	advancedAreas = []Area{
		{"space", spaceLocales},
	}
)
