package catalog

import "smartreads/internal/models"

// Fixtures is the demo data every new process starts with.
func Fixtures() Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		Books: []models.Book{
			{
				ID: 1, ISBN: "AP1287", Name: "Spring in Action", SerialName: "CXEF12389",
				Description: "Comprehensive guide to Spring Framework",
				Authors:     []models.Ref{{ID: 1, Name: "Matt"}},
				Categories:  []models.Ref{{ID: 1, Name: "Programming"}},
				Publishers:  []models.Ref{{ID: 1, Name: "Manning Publications"}},
			},
			{
				ID: 2, ISBN: "BP567#R", Name: "Spring Microservices", SerialName: "KCXEF12389",
				Description: "Building microservices with Spring Boot",
				Authors:     []models.Ref{{ID: 2, Name: "Maxwell"}},
				Categories:  []models.Ref{{ID: 2, Name: "Architecture"}},
				Publishers:  []models.Ref{{ID: 2, Name: "O'Reilly Media"}},
			},
			{
				ID: 3, ISBN: "GH67F#", Name: "Spring Boot", SerialName: "UV#JH",
				Description: "Modern Spring Boot development",
				Authors:     []models.Ref{{ID: 3, Name: "Josh Lang"}},
				Categories:  []models.Ref{{ID: 1, Name: "Programming"}},
				Publishers:  []models.Ref{{ID: 3, Name: "Packt Publishing"}},
			},
		},
		Authors: []models.Author{
			{ID: 1, Name: "Matt", Description: "Spring Framework expert"},
			{ID: 2, Name: "Maxwell", Description: "Microservices architect"},
			{ID: 3, Name: "Josh Lang", Description: "Spring Boot specialist"},
		},
		Categories: []models.Category{
			{ID: 1, Name: "Programming"},
			{ID: 2, Name: "Architecture"},
			{ID: 3, Name: "Web Development"},
		},
		Publishers: []models.Publisher{
			{ID: 1, Name: "Manning Publications"},
			{ID: 2, Name: "O'Reilly Media"},
			{ID: 3, Name: "Packt Publishing"},
		},
	}
}
