package extract

// Keyword tables for transport-mode signals. Matching is
// case-insensitive against whole words or phrases.

// maritimeKeywords are explicit sea-freight signals. Any hit (or a
// non-empty parsed container list) overrides inferred air signals.
var maritimeKeywords = []string{
	"container",
	"conteneur",
	"fcl",
	"lcl",
	"vessel",
	"navire",
	"bill of lading",
	"connaissement",
	"b/l",
	"port of loading",
	"port of discharge",
	"seafreight",
	"sea freight",
	"fret maritime",
}

// airTriggerPhrases are the only free-text phrases that establish air
// transport. Inferred signals (a 3-letter token that happens to be an
// airport code) are not enough on their own.
var airTriggerPhrases = []string{
	"by air",
	"par avion",
	"air waybill",
	"awb",
	"airfreight",
	"air freight",
	"fret aérien",
	"fret aerien",
}

// airportPairCodes is the fixed whitelist of IATA codes accepted as
// an origin/destination pair signal. Codes colliding with incoterm
// abbreviations (FCA, CPT, CFR, DAP, FOB, ...) are deliberately
// absent.
var airportPairCodes = map[string]bool{
	"JIB": true, // Djibouti
	"ADD": true, // Addis Ababa
	"DXB": true, // Dubai
	"CDG": true, // Paris Charles de Gaulle
	"IST": true, // Istanbul
	"NBO": true, // Nairobi
	"BOM": true, // Mumbai
	"CAN": true, // Guangzhou
	"HKG": true, // Hong Kong
	"PVG": true, // Shanghai Pudong
	"ICN": true, // Seoul Incheon
}

// incotermTokens are the 2020 incoterms recognised in free text and
// structured labels.
var incotermTokens = map[string]bool{
	"EXW": true,
	"FCA": true,
	"FAS": true,
	"FOB": true,
	"CFR": true,
	"CIF": true,
	"CPT": true,
	"CIP": true,
	"DAP": true,
	"DPU": true,
	"DDP": true,
}

// heavyLiftKeywords mark project/breakbulk cargo descriptions.
var heavyLiftKeywords = []string{
	"heavy lift",
	"heavy-lift",
	"breakbulk",
	"break bulk",
	"out of gauge",
	"oog",
	"project cargo",
	"colis lourd",
	"hors gabarit",
	"crane",
	"transformer",
	"turbine",
}

// knownCities maps recognised city/commune tokens (upper case) to
// ISO country codes. The destination filter only accepts tokens from
// this table.
var knownCities = map[string]string{
	"DJIBOUTI":       "DJ",
	"DJIBOUTI-VILLE": "DJ",
	"BALBALA":        "DJ",
	"ALI SABIEH":     "DJ",
	"TADJOURAH":      "DJ",
	"OBOCK":          "DJ",
	"DIKHIL":         "DJ",
	"ARTA":           "DJ",
	"ADDIS ABABA":    "ET",
	"ADDIS-ABEBA":    "ET",
	"DIRE DAWA":      "ET",
	"MEKELE":         "ET",
	"HAWASSA":        "ET",
	"DUBAI":          "AE",
	"JEBEL ALI":      "AE",
	"MOMBASA":        "KE",
	"NAIROBI":        "KE",
	"JEDDAH":         "SA",
	"MARSEILLE":      "FR",
	"LE HAVRE":       "FR",
	"PARIS":          "FR",
	"ISTANBUL":       "TR",
	"MUMBAI":         "IN",
	"GUANGZHOU":      "CN",
	"SHANGHAI":       "CN",
	"NINGBO":         "CN",
	"HONG KONG":      "HK",
	"SINGAPORE":      "SG",
}

// knownPorts maps port names to ISO country codes for the country
// resolution ladder of the flow classifier.
var knownPorts = map[string]string{
	"DJIBOUTI":    "DJ",
	"DORALEH":     "DJ",
	"TADJOURAH":   "DJ",
	"JEBEL ALI":   "AE",
	"MOMBASA":     "KE",
	"JEDDAH":      "SA",
	"LE HAVRE":    "FR",
	"MARSEILLE":   "FR",
	"FOS":         "FR",
	"ISTANBUL":    "TR",
	"NHAVA SHEVA": "IN",
	"GUANGZHOU":   "CN",
	"SHANGHAI":    "CN",
	"NINGBO":      "CN",
	"HONG KONG":   "HK",
	"SINGAPORE":   "SG",
}

// addressMarkers reject street-address tokens in the destination
// filter.
var addressMarkers = []string{
	"rue", "avenue", "boulevard", "bp ", "b.p.", "street", "road",
	"zone industrielle", "km ", "p.o. box", "po box",
}

// resortMarkers reject resort and hotel names in the destination
// filter.
var resortMarkers = []string{
	"hotel", "hôtel", "resort", "kempinski", "sheraton", "plage",
	"beach", "lodge", "palace",
}

// CityCountry returns the ISO country for a recognised city token.
func CityCountry(city string) (string, bool) {
	c, ok := knownCities[normaliseToken(city)]
	return c, ok
}

// PortCountry returns the ISO country for a recognised port name.
func PortCountry(port string) (string, bool) {
	c, ok := knownPorts[normaliseToken(port)]
	return c, ok
}

// IsIncoterm reports whether the token is a recognised incoterm.
func IsIncoterm(token string) bool {
	return incotermTokens[normaliseToken(token)]
}
