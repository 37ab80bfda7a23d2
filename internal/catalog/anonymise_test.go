package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProductHash(t *testing.T) {
	h := ProductHash("CeraVe", "Foaming Cleanser", "B07XYZ")
	assert.Len(t, h, 64)
	assert.Equal(t, h, ProductHash("CeraVe", "Foaming Cleanser", "B07XYZ"))
	assert.NotEqual(t, h, ProductHash("CeraVe", "Foaming Cleanser", "B08ABC"))
	assert.NotEqual(t, h, ProductHash("Nivea", "Foaming Cleanser", "B07XYZ"))
}

func TestAcquisitionLeadRotatesMonthly(t *testing.T) {
	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	janLate := time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC)

	lead := AcquisitionLead("B07XYZ", "CeraVe", jan)
	assert.Len(t, lead, 16)
	assert.Equal(t, lead, AcquisitionLead("B07XYZ", "CeraVe", janLate), "same month, same lead")
	assert.NotEqual(t, lead, AcquisitionLead("B07XYZ", "CeraVe", feb), "new month, new lead")
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Niacinamide 10 Zinc 1", CleanName("Niacinamide 10% + Zinc 1%!"))
	assert.Equal(t, "Foam Cleanser", CleanName("  Foam    Cleanser  "))
	assert.Equal(t, "Day & Night Cream", CleanName("Day & Night Cream™"))

	long := strings.Repeat("a", 600)
	assert.Len(t, CleanName(long), 500)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Hydra Serum", DisplayName("Hydra Serum", "serum"))
	assert.Equal(t, "Unknown Serum", DisplayName("", "serum"))
	assert.Equal(t, "Unknown Nail polish", DisplayName("", "nail_polish"))
	assert.Equal(t, "Unknown Product", DisplayName("", ""))

	long := strings.Repeat("b", 300)
	assert.Len(t, DisplayName(long, "serum"), 255)
}
