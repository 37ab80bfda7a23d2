package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	unsafeChars = regexp.MustCompile(`[^\w\s\-&/]`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// ProductHash derives the stable anonymised identity of a scraped product.
func ProductHash(brand, name, externalID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", brand, name, externalID)))
	return hex.EncodeToString(sum[:])
}

// AcquisitionLead derives the monthly-rotating supplier lookup key. Only the
// purchasing team can map it back to a source listing.
func AcquisitionLead(externalID, brand string, now time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s", externalID, brand, now.UTC().Format("200601"))))
	return hex.EncodeToString(sum[:])[:16]
}

// CleanName strips markup punctuation and collapses whitespace so product
// names are safe to show without source attribution.
func CleanName(name string) string {
	cleaned := unsafeChars.ReplaceAllString(name, "")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) > 500 {
		cleaned = cleaned[:500]
	}
	return cleaned
}

// DisplayName truncates a cleaned name for the catalog, falling back to a
// generic label when the name is empty.
func DisplayName(nameClean, productType string) string {
	if nameClean == "" {
		label := strings.ReplaceAll(productType, "_", " ")
		if label == "" {
			label = "product"
		}
		return "Unknown " + strings.ToUpper(label[:1]) + label[1:]
	}
	if len(nameClean) > 255 {
		return nameClean[:255]
	}
	return nameClean
}
