package catalog

import (
	"sort"
	"strings"
)

type activeInfo struct {
	Concerns []string
	Group    string
}

// activeConcernMap maps ingredient keywords found in product names to the
// skin concerns they address and their ingredient group.
var activeConcernMap = map[string]activeInfo{
	"niacinamide":     {[]string{"acne", "hyperpigmentation", "aging"}, "actives"},
	"vitamin c":       {[]string{"hyperpigmentation", "aging", "dullness"}, "actives"},
	"ascorbic acid":   {[]string{"hyperpigmentation", "aging", "dullness"}, "actives"},
	"retinol":         {[]string{"aging", "acne", "texture"}, "actives"},
	"retinal":         {[]string{"aging", "acne", "texture"}, "actives"},
	"salicylic acid":  {[]string{"acne", "blackheads", "oily"}, "actives"},
	"hyaluronic acid": {[]string{"dehydration", "dryness", "aging"}, "humectants"},
	"glycolic acid":   {[]string{"texture", "dullness", "aging"}, "actives"},
	"lactic acid":     {[]string{"texture", "dryness", "sensitivity"}, "actives"},
	"azelaic acid":    {[]string{"acne", "rosacea", "hyperpigmentation"}, "actives"},
	"benzoyl peroxide": {[]string{"acne"}, "actives"},
	"ceramide":        {[]string{"dryness", "sensitivity", "barrier_repair"}, "emollients"},
	"peptide":         {[]string{"aging", "firmness"}, "actives"},
	"squalane":        {[]string{"dryness", "sensitivity"}, "emollients"},
	"zinc":            {[]string{"acne", "oily", "sensitivity"}, "actives"},
	"centella":        {[]string{"sensitivity", "redness", "barrier_repair"}, "actives"},
	"tea tree":        {[]string{"acne", "oily"}, "actives"},
	"bakuchiol":       {[]string{"aging", "sensitivity"}, "actives"},
	"tranexamic acid": {[]string{"hyperpigmentation", "melasma"}, "actives"},
	"arbutin":         {[]string{"hyperpigmentation", "dullness"}, "actives"},
	"kojic acid":      {[]string{"hyperpigmentation"}, "actives"},
	"urea":            {[]string{"dryness", "texture"}, "humectants"},
	"panthenol":       {[]string{"sensitivity", "barrier_repair"}, "humectants"},
	"allantoin":       {[]string{"sensitivity", "barrier_repair"}, "humectants"},
	"snail mucin":     {[]string{"aging", "dehydration", "texture"}, "humectants"},
	"propolis":        {[]string{"acne", "sensitivity"}, "actives"},
	"collagen":        {[]string{"aging", "firmness"}, "humectants"},
	"aloe":            {[]string{"sensitivity", "hydration"}, "humectants"},
}

// contraMap lists who should avoid products containing each active.
var contraMap = map[string][]string{
	"retinol":          {"pregnancy", "sensitive_skin_severe"},
	"retinal":          {"pregnancy", "sensitive_skin_severe"},
	"salicylic acid":   {"pregnancy"},
	"benzoyl peroxide": {"fungal_acne"},
	"glycolic acid":    {"sensitive_skin_severe"},
}

var categoryTypeMap = map[string]string{
	"skincare-serums":       "serum",
	"skincare-moisturizers": "moisturizer",
	"skincare-cleansers":    "cleanser",
	"skincare-toners":       "toner",
	"skincare-masks":        "mask",
	"hair-shampoo":          "shampoo",
	"nail-polish":           "nail_polish",
	"fragrances":            "fragrance",
}

// Fallback concerns when no actives were detected in the name.
var categoryDefaults = map[string][]string{
	"serum":       {"general_skincare"},
	"moisturizer": {"dryness", "dehydration"},
	"cleanser":    {"general_skincare"},
	"toner":       {"general_skincare"},
	"mask":        {"general_skincare"},
	"shampoo":     {"general_haircare"},
	"nail_polish": {"nail_care"},
	"fragrance":   {"general_fragrance"},
}

// ProductTypeFor maps a scraped category slug to a product type.
func ProductTypeFor(category string) string {
	category = strings.ReplaceAll(category, "_", "-")
	if t, ok := categoryTypeMap[category]; ok {
		return t
	}
	if category == "" {
		return "unknown"
	}
	parts := strings.Split(category, "-")
	return parts[len(parts)-1]
}

// IngredientProfile is everything derivable from a product name alone.
type IngredientProfile struct {
	KeyActives        []string
	SuitableFor       []string
	Contraindications []string
	Summary           map[string]int
}

// DeriveProfile scans a product name for known actives and maps them to
// concerns, contraindications and an ingredient group summary. When nothing
// matches, concerns fall back to category defaults for the product type.
func DeriveProfile(name, productType string) IngredientProfile {
	nameLower := strings.ToLower(name)

	profile := IngredientProfile{
		Summary: map[string]int{"actives": 0, "humectants": 0, "emollients": 0},
	}
	suitable := map[string]bool{}
	contras := map[string]bool{}

	for active, info := range activeConcernMap {
		if !strings.Contains(nameLower, active) {
			continue
		}
		profile.KeyActives = append(profile.KeyActives, strings.ReplaceAll(active, " ", "_"))
		for _, c := range info.Concerns {
			suitable[c] = true
		}
		profile.Summary[info.Group]++
	}

	for active, list := range contraMap {
		if !strings.Contains(nameLower, active) {
			continue
		}
		for _, c := range list {
			contras[c] = true
		}
	}

	if len(suitable) == 0 {
		defaults, ok := categoryDefaults[productType]
		if !ok {
			defaults = []string{"general"}
		}
		for _, c := range defaults {
			suitable[c] = true
		}
	}

	profile.SuitableFor = sortedKeys(suitable)
	profile.Contraindications = sortedKeys(contras)
	sort.Strings(profile.KeyActives)
	return profile
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
