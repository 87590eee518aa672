package seeder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type DataGenerator struct {
	rand    *rand.Rand
	counter int
}

func NewDataGenerator() *DataGenerator {
	return &DataGenerator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GenerateForField produces a value for one field, preferring the field
// name over the declared type when the name is telling.
func (g *DataGenerator) GenerateForField(f FieldDef) any {
	nameLower := strings.ToLower(f.Name)

	if len(f.PicklistValues) > 0 {
		return f.PicklistValues[g.rand.Intn(len(f.PicklistValues))]
	}
	if strings.Contains(nameLower, "email") {
		return g.generateEmail()
	}
	if strings.Contains(nameLower, "phone") {
		return g.generatePhone()
	}
	if strings.Contains(nameLower, "name") {
		return g.generateName()
	}
	if strings.Contains(nameLower, "title") {
		return g.generateTitle()
	}

	switch strings.ToLower(f.Type) {
	case "number", "int":
		return g.rand.Intn(10000)
	case "currency", "monetary":
		return float64(g.rand.Intn(100000)) / 100
	case "percent":
		return float64(g.rand.Intn(10000)) / 100
	case "checkbox", "boolean", "bool":
		return g.rand.Intn(2) == 1
	case "date":
		return g.generateDate()
	case "datetime", "timestamp":
		return g.generateTimestamp()
	case "email":
		return g.generateEmail()
	case "phone":
		return g.generatePhone()
	case "url":
		return g.generateURL()
	case "textarea", "longtext":
		return g.generateSentence()
	default:
		return g.generateText()
	}
}

var firstNames = []string{"Amy", "James", "Sofia", "Liam", "Priya", "Carlos", "Mei", "Noah", "Aisha", "Tom"}
var lastNames = []string{"Taylor", "Nguyen", "Garcia", "Okafor", "Kim", "Patel", "Smith", "Brown", "Rossi", "Weber"}
var jobTitles = []string{"VP of Sales", "CTO", "Account Executive", "Buyer", "Director of Operations", "Facilities Manager"}
var words = []string{"alpha", "harbor", "crimson", "delta", "summit", "willow", "atlas", "ember", "cobalt", "meadow"}

func (g *DataGenerator) generateName() string {
	first := firstNames[g.rand.Intn(len(firstNames))]
	last := lastNames[g.rand.Intn(len(lastNames))]
	return first + " " + last
}

func (g *DataGenerator) generateEmail() string {
	g.counter++
	first := strings.ToLower(firstNames[g.rand.Intn(len(firstNames))])
	last := strings.ToLower(lastNames[g.rand.Intn(len(lastNames))])
	return fmt.Sprintf("%s.%s%d@example.com", first, last, g.counter)
}

func (g *DataGenerator) generatePhone() string {
	return fmt.Sprintf("(%03d) %03d-%04d", g.rand.Intn(800)+200, g.rand.Intn(800)+200, g.rand.Intn(10000))
}

func (g *DataGenerator) generateTitle() string {
	return jobTitles[g.rand.Intn(len(jobTitles))]
}

func (g *DataGenerator) generateURL() string {
	return fmt.Sprintf("https://www.%s%s.example.com", words[g.rand.Intn(len(words))], words[g.rand.Intn(len(words))])
}

func (g *DataGenerator) generateText() string {
	return words[g.rand.Intn(len(words))] + " " + words[g.rand.Intn(len(words))]
}

func (g *DataGenerator) generateSentence() string {
	parts := make([]string, 6+g.rand.Intn(6))
	for i := range parts {
		parts[i] = words[g.rand.Intn(len(words))]
	}
	sentence := strings.Join(parts, " ")
	return strings.ToUpper(sentence[:1]) + sentence[1:] + "."
}

func (g *DataGenerator) generateDate() string {
	days := g.rand.Intn(365 * 2)
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

func (g *DataGenerator) generateTimestamp() string {
	minutes := g.rand.Intn(60 * 24 * 365)
	return time.Now().Add(-time.Duration(minutes) * time.Minute).Format("2006-01-02 15:04:05")
}
