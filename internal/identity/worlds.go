package identity

// knownWorlds lists every world name that can appear glued to a character
// name. Stored lowercase; matched as a case-insensitive suffix.
var knownWorlds = []string{
	"adamantoise", "cactuar", "faerie", "gilgamesh", "jenova", "midgardsormr", "sargatanas", "siren",
	"behemoth", "excalibur", "exodus", "famfrit", "hyperion", "lamia", "leviathan", "ultros",
	"balmung", "brynhildr", "coeurl", "diabolos", "goblin", "malboro", "mateus", "zalera",
	"halicarnassus", "maduin", "marilith", "seraph", "cuchulainn", "golem", "kraken", "rafflesia",
	"anima", "asura", "chocobo", "hades", "ixion", "masamune", "pandaemonium", "titan",
	"belias", "mandragora", "ramuh", "shinryu", "unicorn", "valefor", "yojimbo", "zeromus",
	"alexander", "bahamut", "durandal", "fenrir", "ifrit", "ridill", "tiamat", "ultima",
	"aegis", "atomos", "carbuncle", "garuda", "gungnir", "kujata", "tonberry", "typhon",
	"cerberus", "louisoix", "moogle", "omega", "phantom", "ragnarok", "raiden", "spriggan",
	"shiva", "twintania", "lich", "odin", "zodiark",
	"bismarck", "ravana", "sephirot", "sophia", "zurvan",
}
