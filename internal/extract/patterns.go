package extract

import "regexp"

// attrPattern captures one physical/technical attribute from free text.
// The full match becomes the claim snippet; the first capture group is the
// raw value.
type attrPattern struct {
	key string
	re  *regexp.Regexp
}

var attrPatterns = []attrPattern{
	{"weight", regexp.MustCompile(`(?i)\b(?:item\s+|net\s+)?weight\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:kg|kgs|g|grams?|lbs?|pounds?|oz|ounces?))\b`)},
	{"weight", regexp.MustCompile(`(?i)\bweighs\s+(?:just\s+|only\s+)?([\d]+(?:[.,]\d+)?\s*(?:kg|g|lbs?|pounds?|oz))\b`)},
	{"dimensions", regexp.MustCompile(`(?i)\b(?:dimensions|measures)\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*[x×]\s*[\d]+(?:[.,]\d+)?(?:\s*[x×]\s*[\d]+(?:[.,]\d+)?)?\s*(?:cm|mm|m|in|inches)?)`)},
	{"capacity", regexp.MustCompile(`(?i)\bcapacity\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:mah|wh|kwh|l|liters?|litres?|ml|gal(?:lons?)?))\b`)},
	{"capacity", regexp.MustCompile(`(?i)\b([\d]+(?:[.,]\d+)?\s*(?:mah|wh|kwh))\b\s+(?:battery|capacity|cell)`)},
	{"battery_life", regexp.MustCompile(`(?i)\b(?:battery\s+life|play\s*time|run\s*time|runtime)\s*[:\-]?\s*(?:up\s+to\s+)?([\d]+(?:[.,]\d+)?\s*(?:h|hrs?|hours?))\b`)},
	{"battery_life", regexp.MustCompile(`(?i)\bup\s+to\s+([\d]+(?:[.,]\d+)?\s*hours?)\s+(?:of\s+)?(?:battery|playback|playtime|runtime|listening)`)},
	{"power", regexp.MustCompile(`(?i)\b(?:power|output|wattage)\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:w|watts?|kw))\b`)},
	{"screen", regexp.MustCompile(`(?i)\b(?:screen|display)\s*(?:size)?\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:"|-?\s?in(?:ch(?:es)?)?))`)},
	{"ip_rating", regexp.MustCompile(`(?i)\b(ip[x0-9]\d)\b`)},
	{"load_capacity", regexp.MustCompile(`(?i)\b(?:load|weight)\s+capacity\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:kg|lbs?|pounds?))\b`)},
	{"load_capacity", regexp.MustCompile(`(?i)\bsupports?\s+up\s+to\s+([\d]+(?:[.,]\d+)?\s*(?:kg|lbs?))\b`)},
	{"packed_size", regexp.MustCompile(`(?i)\b(?:packed|folded)\s+size\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*[x×]\s*[\d]+(?:[.,]\d+)?(?:\s*[x×]\s*[\d]+(?:[.,]\d+)?)?\s*(?:cm|mm|in|inches)?)`)},
	{"seat_height", regexp.MustCompile(`(?i)\bseat\s+height\s*[:\-]?\s*([\d]+(?:[.,]\d+)?\s*(?:cm|mm|in(?:ch(?:es)?)?))\b`)},
	{"material", regexp.MustCompile(`(?i)\b(?:material|made\s+(?:of|from))\s*[:\-]?\s*([a-z][a-z0-9/\- ]{2,40}?)(?:[.,;]|$)`)},
}

// keyAliases maps spec-table labels (HTML tables, PDF datasheet lines) to
// canonical attribute keys.
var keyAliases = map[string]string{
	"weight":             "weight",
	"item weight":        "weight",
	"net weight":         "weight",
	"dimensions":         "dimensions",
	"product dimensions": "dimensions",
	"size":               "dimensions",
	"capacity":           "capacity",
	"battery capacity":   "capacity",
	"battery":            "battery_life",
	"battery life":       "battery_life",
	"runtime":            "battery_life",
	"play time":          "battery_life",
	"playtime":           "battery_life",
	"power":              "power",
	"output":             "power",
	"wattage":            "power",
	"screen":             "screen",
	"screen size":        "screen",
	"display":            "screen",
	"ip rating":          "ip_rating",
	"water resistance":   "ip_rating",
	"load capacity":      "load_capacity",
	"weight capacity":    "load_capacity",
	"max load":           "load_capacity",
	"packed size":        "packed_size",
	"folded size":        "packed_size",
	"seat height":        "seat_height",
	"material":           "material",
	"materials":          "material",
	"fabric":             "material",
}

// specHeadingRe marks DOM sections likely to contain product detail.
var specHeadingRe = regexp.MustCompile(`(?i)\b(spec(?:ification)?s?|features?|dimensions?|materials?|technical|in\s+the\s+box|details)\b`)
